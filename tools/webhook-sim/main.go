// webhook-sim posts a signed orders/create webhook to a local instance, for
// exercising the capacity counter and outbox without a real Shopify store.
package main

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

func main() {
	var (
		baseURL = flag.String("base-url", getenv("BASE_URL", "http://localhost:8080"), "service base url")
		shop    = flag.String("shop", getenv("SHOP", "dev-store.myshopify.com"), "shop domain")
		date    = flag.String("date", getenv("DELIVERY_DATE", ""), "delivery date (YYYY-MM-DD)")
		secret  = flag.String("secret", getenv("SHOPIFY_WEBHOOK_SECRET", ""), "webhook signing secret")
	)
	flag.Parse()

	if strings.TrimSpace(*secret) == "" {
		fatal("SHOPIFY_WEBHOOK_SECRET is required")
	}
	if strings.TrimSpace(*date) == "" {
		fatal("DELIVERY_DATE is required")
	}

	now := time.Now().UTC()
	payload, err := json.Marshal(map[string]any{
		"id":                   now.UnixNano(),
		"admin_graphql_api_id": fmt.Sprintf("gid://shopify/Order/%d", now.UnixNano()),
		"line_items": []map[string]any{
			{
				"properties": []map[string]string{
					{"name": "Delivery Date", "value": *date},
				},
			},
		},
	})
	if err != nil {
		fatal(err.Error())
	}

	mac := hmac.New(sha256.New, []byte(*secret))
	mac.Write(payload)
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	req, err := http.NewRequest(http.MethodPost, strings.TrimRight(*baseURL, "/")+"/webhooks/orders/create", bytes.NewReader(payload))
	if err != nil {
		fatal(err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Hmac-Sha256", signature)
	req.Header.Set("X-Shopify-Shop-Domain", *shop)
	req.Header.Set("X-Shopify-Topic", "orders/create")
	req.Header.Set("X-Shopify-Webhook-Id", fmt.Sprintf("sim-%d", now.UnixNano()))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fatal(err.Error())
	}
	defer resp.Body.Close()

	fmt.Printf("status=%d\n", resp.StatusCode)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, "error: "+msg)
	os.Exit(1)
}
