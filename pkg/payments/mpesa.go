package payments

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	mpesaTokenKey      = "mpesa:access_token"
	mpesaTimestamp     = "20060102150405"
	mpesaTokenLeeway   = 60 * time.Second
	mpesaTransactionTp = "CustomerPayBillOnline"
)

// MpesaConfig carries the Daraja credentials.
type MpesaConfig struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	Shortcode      string
	Passkey        string
	CallbackURL    string
}

// MpesaClient talks to the Daraja REST API. The OAuth token is cached in
// Redis when a client is provided, otherwise in memory.
type MpesaClient struct {
	cfg   MpesaConfig
	http  *http.Client
	cache redis.Cmdable
	now   func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time
}

func NewMpesaClient(cfg MpesaConfig, cache redis.Cmdable) *MpesaClient {
	return &MpesaClient{
		cfg:   cfg,
		http:  &http.Client{Timeout: 30 * time.Second},
		cache: cache,
		now:   time.Now,
	}
}

// STKPushRequest is one customer prompt.
type STKPushRequest struct {
	Phone       string
	Amount      float64
	Reference   string
	Description string
}

// STKPushResponse is Daraja's synchronous acknowledgement. ResponseCode "0"
// means the prompt was sent to the handset.
type STKPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

func (r *STKPushResponse) Accepted() bool { return r.ResponseCode == "0" }

// NormalizePhone converts 07.., 01.., +2547.. and 2547.. forms to 2547...
func NormalizePhone(phone string) string {
	p := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(phone))
	p = strings.TrimPrefix(p, "+")
	if strings.HasPrefix(p, "0") && len(p) == 10 {
		p = "254" + p[1:]
	}
	return p
}

// Password derives the STK password for timestamp ts.
func (c *MpesaClient) Password(ts string) string {
	return base64.StdEncoding.EncodeToString([]byte(c.cfg.Shortcode + c.cfg.Passkey + ts))
}

// AccessToken returns a cached token or requests a new one.
func (c *MpesaClient) AccessToken(ctx context.Context) (string, error) {
	if c.cache != nil {
		if tok, err := c.cache.Get(ctx, mpesaTokenKey).Result(); err == nil && tok != "" {
			return tok, nil
		}
	} else {
		c.mu.Lock()
		if c.token != "" && c.now().Before(c.expiry) {
			tok := c.token
			c.mu.Unlock()
			return tok, nil
		}
		c.mu.Unlock()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/oauth/v1/generate?grant_type=client_credentials", nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret)
	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: oauth: %v", ErrTransport, err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: oauth status %d", ErrTransport, res.StatusCode)
	}
	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   string `json:"expires_in"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil || body.AccessToken == "" {
		return "", fmt.Errorf("%w: oauth response unreadable", ErrTransport)
	}

	ttl := time.Hour
	if secs, err := strconv.Atoi(body.ExpiresIn); err == nil && secs > 0 {
		ttl = time.Duration(secs) * time.Second
	}
	if ttl > mpesaTokenLeeway {
		ttl -= mpesaTokenLeeway
	}
	if c.cache != nil {
		_ = c.cache.Set(ctx, mpesaTokenKey, body.AccessToken, ttl).Err()
	} else {
		c.mu.Lock()
		c.token, c.expiry = body.AccessToken, c.now().Add(ttl)
		c.mu.Unlock()
	}
	return body.AccessToken, nil
}

// STKPush prompts the customer's handset. A non-zero ResponseCode is
// returned without error; only transport failures produce ErrTransport.
func (c *MpesaClient) STKPush(ctx context.Context, in STKPushRequest) (*STKPushResponse, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	ts := c.now().Format(mpesaTimestamp)
	phone := NormalizePhone(in.Phone)
	payload := map[string]any{
		"BusinessShortCode": c.cfg.Shortcode,
		"Password":          c.Password(ts),
		"Timestamp":         ts,
		"TransactionType":   mpesaTransactionTp,
		"Amount":            int64(math.Ceil(in.Amount)),
		"PartyA":            phone,
		"PartyB":            c.cfg.Shortcode,
		"PhoneNumber":       phone,
		"CallBackURL":       c.cfg.CallbackURL,
		"AccountReference":  in.Reference,
		"TransactionDesc":   in.Description,
	}
	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/mpesa/stkpush/v1/processrequest", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: stk push: %v", ErrTransport, err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: stk push status %d", ErrTransport, res.StatusCode)
	}

	var raw struct {
		STKPushResponse
		ErrorCode    string `json:"errorCode"`
		ErrorMessage string `json:"errorMessage"`
	}
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: stk push response unreadable", ErrTransport)
	}
	out := raw.STKPushResponse
	if res.StatusCode != http.StatusOK && out.ResponseCode == "" {
		out.ResponseCode = raw.ErrorCode
		if out.ResponseCode == "" {
			out.ResponseCode = strconv.Itoa(res.StatusCode)
		}
		out.ResponseDescription = raw.ErrorMessage
	}
	return &out, nil
}

// STKCallback is the result Daraja posts to the callback URL.
type STKCallback struct {
	MerchantRequestID string
	CheckoutRequestID string
	ResultCode        int
	ResultDesc        string
	Receipt           string
	Amount            float64
	Phone             string
}

func (c *STKCallback) Succeeded() bool { return c.ResultCode == 0 }

// ParseSTKCallback decodes the Body.stkCallback envelope and flattens
// CallbackMetadata items.
func ParseSTKCallback(body []byte) (*STKCallback, error) {
	var env struct {
		Body struct {
			StkCallback struct {
				MerchantRequestID string `json:"MerchantRequestID"`
				CheckoutRequestID string `json:"CheckoutRequestID"`
				ResultCode        int    `json:"ResultCode"`
				ResultDesc        string `json:"ResultDesc"`
				CallbackMetadata  struct {
					Item []struct {
						Name  string          `json:"Name"`
						Value json.RawMessage `json:"Value"`
					} `json:"Item"`
				} `json:"CallbackMetadata"`
			} `json:"stkCallback"`
		} `json:"Body"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	cb := env.Body.StkCallback
	if cb.CheckoutRequestID == "" {
		return nil, fmt.Errorf("callback without CheckoutRequestID")
	}
	out := &STKCallback{
		MerchantRequestID: cb.MerchantRequestID,
		CheckoutRequestID: cb.CheckoutRequestID,
		ResultCode:        cb.ResultCode,
		ResultDesc:        cb.ResultDesc,
	}
	for _, it := range cb.CallbackMetadata.Item {
		v := strings.Trim(string(it.Value), `"`)
		switch it.Name {
		case "MpesaReceiptNumber":
			out.Receipt = v
		case "Amount":
			out.Amount, _ = strconv.ParseFloat(v, 64)
		case "PhoneNumber":
			out.Phone = v
		}
	}
	return out, nil
}
