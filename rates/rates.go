// Package rates refreshes the dollar rates of a currency catalog from a remote
// JSON document.
//
// The document is expected to hold, somewhere, an object mapping currency
// acronyms to the number of units worth one reference unit, as most free
// exchange rate APIs do when asked for USD based rates:
//
//	{"base": "USD", "rates": {"USD": 1, "EUR": 0.92, "BTC": 0.000016}}
//
// The location of that object is given as a jsonpath expression ("$.rates").
package rates

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"os"
	"slices"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/wellets"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Client fetches dollar rates.
type Client struct {
	URL  string       // address of the JSON rates document
	Path string       // jsonpath of the rates object in the document
	HTTP *http.Client // defaults to http.DefaultClient
	log  zerolog.Logger
}

// New returns a client for the rates document at 'url'. When 'cache' is true
// responses are kept in the temporary directory until the end of the day.
func New(url, path string, cache bool, log zerolog.Logger) *Client {
	log = log.With().Str("client", "rates").Logger()
	client := new(http.Client)
	client.Timeout = 30 * time.Second
	if cache {
		client.Transport = &diskCache{base: http.DefaultTransport, dir: os.TempDir(), now: time.Now, log: log}
	}
	return &Client{URL: url, Path: path, HTTP: client, log: log}
}

// Fetch downloads the rates document and returns the rate for each acronym.
func (c *Client) Fetch(ctx context.Context) (map[string]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot create request for %q", c.URL)
	}
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot http GET %q", c.URL)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("cannot http GET %v%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}

	var jobj any
	if err := json.NewDecoder(resp.Body).Decode(&jobj); err != nil {
		return nil, errors.Wrapf(err, "invalid JSON from %q", c.URL)
	}
	return extract(jobj, c.Path)
}

// extract reads the rates object at 'path' in 'jobj'.
func extract(jobj any, path string) (map[string]float64, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, errors.Wrapf(err, "error parsing %q", path)
	}
	// jsonpath may return a list of one answer instead of the answer.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	jrates, ok := jval.(map[string]any)
	if !ok {
		return nil, errors.Errorf("error parsing %q: got %T, want an object", path, jval)
	}

	rates := make(map[string]float64, len(jrates))
	for acronym, v := range jrates {
		rate, ok := v.(float64)
		if !ok || rate <= 0 || math.IsInf(rate, 0) {
			return nil, errors.Wrapf(wellets.ErrInvalidCurrencyRate, "%s: %v", acronym, v)
		}
		rates[acronym] = rate
	}
	return rates, nil
}

// Sync fetches the latest rates and returns a copy of 'catalog' updated with them.
//
// Currencies missing from the rates document keep their previous rate.
func (c *Client) Sync(ctx context.Context, catalog *wellets.Catalog) (*wellets.Catalog, error) {
	rates, err := c.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	var updated, missing []string
	for cur := range catalog.All() {
		if _, ok := rates[cur.Acronym]; ok {
			updated = append(updated, cur.Acronym)
		} else {
			missing = append(missing, cur.Acronym)
		}
	}
	slices.Sort(missing)
	if len(missing) > 0 {
		c.log.Warn().Strs("acronyms", missing).Msg("no rate found, keeping the previous one")
	}
	c.log.Info().Int("updated", len(updated)).Int("available", len(rates)).Msg("rates synchronised")

	return catalog.WithRates(rates)
}
