package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	GraphApiBaseUri = "https://graph.facebook.com"

	DefaultApiVersion = "v24.0"

	// Graph API requests are bounded so a stuck upstream can't pin a scan.
	RequestTimeoutSeconds = 10

	// Field projection requested for every media item.
	mediaFields = "caption,media_type,media_url,permalink,timestamp,id"
)

// MediaItem is one media entry as returned by the Graph API business
// discovery query. Id is the item's external id and the only identity the
// rest of the pipeline relies on.
type MediaItem struct {
	Id        string `json:"id"`
	Caption   string `json:"caption"`
	MediaType string `json:"media_type"`
	MediaUrl  string `json:"media_url"`
	Permalink string `json:"permalink"`
	Timestamp string `json:"timestamp"`
}

// InstagramClient fetches an account's media page by page through the Graph
// API business_discovery edge.
type InstagramClient struct {
	// HttpClient that is used to actually make request
	client *http.Client

	baseUri     string
	apiVersion  string
	businessId  string
	accessToken string
}

func NewInstagramClient(client *http.Client, baseUri string, apiVersion string, businessId string, accessToken string) *InstagramClient {
	if apiVersion == "" {
		apiVersion = DefaultApiVersion
	}
	return &InstagramClient{
		client:      client,
		baseUri:     baseUri,
		apiVersion:  apiVersion,
		businessId:  businessId,
		accessToken: accessToken,
	}
}

// NewInstagramClientFromEnv builds the production client from IG_BUSINESS_ID,
// IG_ACCESS_TOKEN and IG_API_VERSION.
func NewInstagramClientFromEnv() *InstagramClient {
	return NewInstagramClient(
		&http.Client{Timeout: RequestTimeoutSeconds * time.Second},
		GraphApiBaseUri,
		os.Getenv("IG_API_VERSION"),
		os.Getenv("IG_BUSINESS_ID"),
		os.Getenv("IG_ACCESS_TOKEN"),
	)
}

type businessDiscoveryResponse struct {
	BusinessDiscovery struct {
		Media struct {
			Data   []MediaItem `json:"data"`
			Paging struct {
				Cursors struct {
					After string `json:"after"`
				} `json:"cursors"`
			} `json:"paging"`
		} `json:"media"`
	} `json:"business_discovery"`
}

func ParseIntoBusinessDiscoveryResponse(bytes []byte) (*businessDiscoveryResponse, error) {
	res := &businessDiscoveryResponse{}
	err := json.Unmarshal(bytes, res)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// FetchMediaPage retrieves one page of the account's media, starting after
// cursor when one is given. It returns the page's items and the cursor for
// the next page, empty when the returned page is the last one. Any transport
// failure, non-2xx status or undecodable body is returned as an error with no
// items and no cursor; the caller treats that as terminal for this invocation.
func (c *InstagramClient) FetchMediaPage(ctx context.Context, username string, cursor string) ([]MediaItem, string, error) {
	req, err := c.constructMediaPageRequest(ctx, username, cursor)
	if err != nil {
		return nil, "", err
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, "", errors.Wrap(err, "fail to request instagram media page")
	}
	defer res.Body.Close()

	body, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return nil, "", errors.Wrap(err, "fail to read instagram response body")
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		excerpt := strings.TrimSpace(string(body))
		if len(excerpt) > 1024 {
			excerpt = excerpt[:1024]
		}
		return nil, "", errors.Errorf("instagram api error %s: %s", res.Status, excerpt)
	}

	parsed, err := ParseIntoBusinessDiscoveryResponse(body)
	if err != nil {
		return nil, "", errors.Wrap(err, "fail to parse instagram response")
	}

	media := parsed.BusinessDiscovery.Media
	return media.Data, media.Paging.Cursors.After, nil
}

func (c *InstagramClient) constructMediaPageRequest(ctx context.Context, username string, cursor string) (*http.Request, error) {
	mediaQuery := fmt.Sprintf("media{%s}", mediaFields)
	if cursor != "" {
		mediaQuery = fmt.Sprintf("media.after(%s){%s}", cursor, mediaFields)
	}

	params := url.Values{}
	params.Set("fields", fmt.Sprintf("business_discovery.username(%s){%s}", username, mediaQuery))
	params.Set("access_token", c.accessToken)

	uri := fmt.Sprintf("%s/%s/%s?%s", c.baseUri, c.apiVersion, c.businessId, params.Encode())
	return http.NewRequestWithContext(ctx, "GET", uri, nil)
}
