// Package shopify implements the Shopify-facing authentication pieces: app
// proxy signatures, webhook HMACs, embedded-app session tokens, and product
// metafield decoding.
package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// VerifyProxySignature checks the app proxy signature Shopify attaches when it
// forwards a storefront request. The scheme is HMAC-SHA256 over the sorted
// key=value pairs concatenated with no separator, values of repeated keys
// joined by commas, the signature parameter itself excluded; hex encoded.
func VerifyProxySignature(query url.Values, secret string) bool {
	sig := query.Get("signature")
	if sig == "" {
		return false
	}

	keys := make([]string, 0, len(query))
	for k := range query {
		if k == "signature" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteString("=")
		sb.WriteString(strings.Join(query[k], ","))
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(sb.String()))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(sig))
}

// VerifyWebhookHMAC checks the X-Shopify-Hmac-Sha256 header against the raw
// webhook body: base64(HMAC-SHA256(body, secret)), constant-time compare.
func VerifyWebhookHMAC(body []byte, header, secret string) bool {
	if strings.TrimSpace(header) == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(header))
}

// NormalizeShopDomain turns a bare shop handle into its myshopify domain and
// lowercases either form.
func NormalizeShopDomain(shop string) string {
	shop = strings.ToLower(strings.TrimSpace(shop))
	if shop == "" {
		return ""
	}
	if strings.Contains(shop, ".") {
		return shop
	}
	return shop + ".myshopify.com"
}
