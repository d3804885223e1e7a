package odds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client fala com o the-odds-api (ou com o odds-simulator, que expõe as mesmas rotas)
type Client struct {
	http    *resty.Client
	apiKey  string
	regions string
}

func NewClient(baseURL, apiKey, regions string, timeout time.Duration) *Client {
	baseURL = strings.TrimSuffix(baseURL, "/")
	if regions == "" {
		regions = "us"
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{http: c, apiKey: apiKey, regions: regions}
}

func (c *Client) newRequest(ctx context.Context) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetQueryParam("apiKey", c.apiKey)
}

func (c *Client) Event(ctx context.Context, sport, matchID string) (*Event, error) {
	var ev Event
	resp, err := c.newRequest(ctx).
		SetPathParams(map[string]string{"sport": sport, "id": matchID}).
		SetQueryParams(map[string]string{
			"regions":    c.regions,
			"markets":    MarketH2H,
			"oddsFormat": "decimal",
		}).
		SetResult(&ev).
		Get("/sports/{sport}/events/{id}/odds")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	if ev.ID == "" {
		return nil, ErrMatchNotFound
	}
	return &ev, nil
}

func (c *Client) Sports(ctx context.Context) (json.RawMessage, error) {
	resp, err := c.newRequest(ctx).Get("/sports")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	return rawBody(resp)
}

func (c *Client) Matches(ctx context.Context, sport string) (json.RawMessage, error) {
	resp, err := c.newRequest(ctx).
		SetPathParam("sport", sport).
		SetQueryParams(map[string]string{
			"regions":    c.regions,
			"markets":    MarketH2H,
			"oddsFormat": "decimal",
		}).
		Get("/sports/{sport}/odds")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	return rawBody(resp)
}

func (c *Client) Scores(ctx context.Context, sport string, daysFrom int) (json.RawMessage, error) {
	resp, err := c.newRequest(ctx).
		SetPathParam("sport", sport).
		SetQueryParam("daysFrom", strconv.Itoa(daysFrom)).
		Get("/sports/{sport}/scores")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	return rawBody(resp)
}

// checkResponse traduz falhas de transporte e status HTTP para os erros do pacote
func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	switch code := resp.StatusCode(); {
	case code == http.StatusNotFound, code == http.StatusUnprocessableEntity:
		return ErrMatchNotFound
	case resp.IsError():
		return fmt.Errorf("%w: status %d", ErrUnavailable, code)
	}
	return nil
}

func rawBody(resp *resty.Response) (json.RawMessage, error) {
	b := resp.Body()
	if !json.Valid(b) {
		return nil, fmt.Errorf("%w: invalid json body", ErrUnavailable)
	}
	return json.RawMessage(b), nil
}
