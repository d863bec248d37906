// Package pubchem implements the compound lookup client.
//
// A lookup is two dependent fetches against the remote compound database:
// the property endpoint resolves an identifier to a compound ID plus its
// structural identifiers and molecular weight, then the record endpoint is
// queried with that ID for the descriptive fields the first response lacks
// (display name, CAS number, experimental density). Both fetches pass
// through one shared FIFO rate gate, so every row's lookup serializes at the
// network boundary.
//
// Failures are typed (*LookupError): a structured "no such compound" answer
// is NotFound, not a transport error, and a response missing its top-level
// success key fails fast as NotFound without the second fetch.
package pubchem

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/stoichtab/stoichtab/internal/sheet"
)

const (
	defaultRESTBase = "https://pubchem.ncbi.nlm.nih.gov/rest/pug"
	defaultViewBase = "https://pubchem.ncbi.nlm.nih.gov/rest/pug_view"
	compoundBase    = "https://pubchem.ncbi.nlm.nih.gov/compound/"

	// DefaultInterval is the spacing of the request gate: one request may
	// start per interval, in strict submission order.
	DefaultInterval = 200 * time.Millisecond
)

// Doer is the single HTTP capability the client consumes.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Compound is the normalized result of a successful lookup.
type Compound struct {
	CID             int64
	Name            string
	CAS             string
	SMILES          string
	InChI           string
	InChIKey        string
	MolecularWeight float64

	// Density is a Number in g/cm³, or sheet.NA when the record carries no
	// parseable density. It is never Null on a successful lookup.
	Density sheet.Value

	SourceURL string
}

// Client performs rate-limited compound lookups.
// One Client is shared by all rows of a sheet; its gate is the only state
// shared across rows.
type Client struct {
	http     Doer
	limiter  *limiter
	cache    *Cache
	restBase string
	viewBase string
	log      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport. Tests pass a stub Doer.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) { c.http = d }
}

// WithInterval changes the gate spacing.
func WithInterval(d time.Duration) Option {
	return func(c *Client) { c.limiter = newLimiter(d) }
}

// WithCache attaches a lookup cache. Cache hits bypass the gate entirely.
func WithCache(cache *Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithBaseURLs points the client at alternative endpoints (tests use an
// httptest server).
func WithBaseURLs(rest, view string) Option {
	return func(c *Client) {
		c.restBase = rest
		c.viewBase = view
	}
}

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient builds a Client with the default transport, endpoints and
// 200ms gate interval.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:     http.DefaultClient,
		limiter:  newLimiter(DefaultInterval),
		restBase: defaultRESTBase,
		viewBase: defaultViewBase,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// propertyReply is the shape of the property endpoint's answer. Molecular
// weight arrives as a quoted decimal string.
type propertyReply struct {
	PropertyTable *struct {
		Properties []struct {
			CID             int64      `json:"CID"`
			MolecularWeight flexNumber `json:"MolecularWeight"`
			CanonicalSMILES string     `json:"CanonicalSMILES"`
			InChI           string     `json:"InChI"`
			InChIKey        string     `json:"InChIKey"`
		} `json:"Properties"`
	} `json:"PropertyTable"`
}

// flexNumber decodes a JSON number or a numeric string.
type flexNumber float64

func (f *flexNumber) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n = json.Number(s)
	}
	v, err := n.Float64()
	if err != nil {
		return err
	}
	*f = flexNumber(v)
	return nil
}

// Lookup resolves an identifier to a Compound.
//
// kind must be concrete (CAS, Name, CID, SMILES, InChIKey, InChI); resolving
// [auto] input is the caller's job via classify. Returns *LookupError on
// failure. The context covers queue waiting and both fetches.
func (c *Client) Lookup(ctx context.Context, kind sheet.Kind, value string) (*Compound, error) {
	if !kind.Concrete() {
		return nil, networkError(kind, value, fmt.Sprintf("kind %q is not searchable", kind), nil)
	}

	if c.cache != nil {
		if comp, ok, err := c.cache.Get(ctx, kind, value); err != nil {
			c.log.Warn("lookup cache read failed", "error", err, "kind", kind, "query", value)
		} else if ok {
			c.log.Debug("lookup cache hit", "kind", kind, "query", value, "cid", comp.CID)
			return comp, nil
		}
	}

	comp, err := c.fetchProperties(ctx, kind, value)
	if err != nil {
		return nil, err
	}
	if err := c.fetchRecord(ctx, kind, value, comp); err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Put(ctx, kind, value, comp); err != nil {
			c.log.Warn("lookup cache write failed", "error", err, "kind", kind, "query", value)
		}
	}

	c.log.Debug("lookup resolved",
		"kind", kind,
		"query", value,
		"cid", comp.CID,
		"name", comp.Name,
	)
	return comp, nil
}

// fetchProperties performs the first fetch and fails fast with NotFound when
// the payload lacks the PropertyTable success key.
func (c *Client) fetchProperties(ctx context.Context, kind sheet.Kind, value string) (*Compound, error) {
	reqURL, err := c.propertyURL(kind, value)
	if err != nil {
		return nil, networkError(kind, value, "build request", err)
	}

	body, lerr := c.fetch(ctx, kind, value, reqURL)
	if lerr != nil {
		return nil, lerr
	}

	var reply propertyReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, networkError(kind, value, "decode property response", err)
	}
	if reply.PropertyTable == nil || len(reply.PropertyTable.Properties) == 0 {
		return nil, notFoundError(kind, value)
	}

	p := reply.PropertyTable.Properties[0]
	return &Compound{
		CID:             p.CID,
		SMILES:          p.CanonicalSMILES,
		InChI:           p.InChI,
		InChIKey:        p.InChIKey,
		MolecularWeight: float64(p.MolecularWeight),
		SourceURL:       compoundBase + strconv.FormatInt(p.CID, 10),
	}, nil
}

// fetchRecord performs the dependent second fetch and fills the descriptive
// fields. A record without a parseable density yields Density = N/A, which
// is a result, not an error.
func (c *Client) fetchRecord(ctx context.Context, kind sheet.Kind, value string, comp *Compound) error {
	reqURL := fmt.Sprintf("%s/data/compound/%d/JSON", c.viewBase, comp.CID)

	body, lerr := c.fetch(ctx, kind, value, reqURL)
	if lerr != nil {
		return lerr
	}

	var reply viewReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return networkError(kind, value, "decode record response", err)
	}
	if reply.Record == nil {
		return networkError(kind, value, "record payload missing", nil)
	}

	comp.Name = reply.Record.RecordTitle
	comp.CAS = reply.Record.casNumber()
	if d, ok := reply.Record.density(); ok {
		comp.Density = sheet.Number(d)
	} else {
		comp.Density = sheet.NA
	}
	return nil
}

// fetch waits for the gate, performs one GET and maps transport and status
// failures onto the error taxonomy.
func (c *Client) fetch(ctx context.Context, kind sheet.Kind, value, reqURL string) ([]byte, *LookupError) {
	if err := c.limiter.Acquire(ctx); err != nil {
		return nil, networkError(kind, value, "request cancelled while queued", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, networkError(kind, value, "build request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, networkError(kind, value, "compound database unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkError(kind, value, "read response", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, notFoundError(kind, value)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable:
		return nil, rateLimitedError(kind, value)
	default:
		return nil, networkError(kind, value, fmt.Sprintf("unexpected status %s", resp.Status), nil)
	}
}

// propertyURL builds the identifier-specific property request. InChI goes
// through a query parameter because the slashes in the identifier would be
// eaten by path routing; SMILES is path-escaped for the same reason.
func (c *Client) propertyURL(kind sheet.Kind, value string) (string, error) {
	const props = "/property/MolecularWeight,CanonicalSMILES,InChI,InChIKey/JSON"

	switch kind {
	case sheet.KindCAS, sheet.KindName:
		return c.restBase + "/compound/name/" + url.PathEscape(value) + props, nil
	case sheet.KindCID:
		return c.restBase + "/compound/cid/" + url.PathEscape(value) + props, nil
	case sheet.KindSMILES:
		return c.restBase + "/compound/smiles/" + url.PathEscape(value) + props, nil
	case sheet.KindInChIKey:
		return c.restBase + "/compound/inchikey/" + url.PathEscape(value) + props, nil
	case sheet.KindInChI:
		return c.restBase + "/compound/inchi" + props + "?inchi=" + url.QueryEscape(value), nil
	default:
		return "", fmt.Errorf("no endpoint for kind %q", kind)
	}
}

// QueueLen reports the number of lookups waiting at the gate.
// Used for tests and diagnostics.
func (c *Client) QueueLen() int { return c.limiter.Len() }
