package render

import (
	"net/http/cookiejar"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	browser "github.com/EDDYCJY/fake-useragent"
	"github.com/go-resty/resty/v2"

	"medisearch-backend/lib/telemetry"
)

// NewAPIClient builds the resty client the API-backed sources are
// queried with: browser-like user agent, cookie jar, cloudflare bypass
// transport and a fixed per-request timeout. There is no retry at this
// layer.
func NewAPIClient(baseURL, tracerName string) (*resty.Client, error) {
	client := resty.New()
	client.SetBaseURL(baseURL)

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", browser.Chrome())
	client.SetHeader("accept", "application/json")
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, tracerName)
	return client, nil
}
