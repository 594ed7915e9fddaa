package domains

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	probeTimeout = 5 * time.Second

	// ValidateConcurrency bounds parallel probes so candidate batches don't
	// exhaust the socket budget or hammer target hosts.
	ValidateConcurrency = 3
)

// Server header fragments that indicate a registrar parking page rather than a
// real site.
var parkingServerSignatures = []string{
	"parking",
	"sedoparking",
	"bodis",
	"parkingcrew",
	"dan.com",
	"afternic",
}

// Validator probes candidate domains for liveness.
type Validator struct {
	client *http.Client

	// probeURL maps a normalized domain to the URL to probe. Overridable in tests.
	probeURL func(domain string) string
}

// NewValidator constructs a Validator with the probe timeout applied.
func NewValidator() *Validator {
	return &Validator{
		probeURL: func(domain string) string { return "https://" + domain },
		client: &http.Client{
			Timeout: probeTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// Validate reports whether https://{domain} resolves to a live, non-parked
// site. Network failures, DNS failures, and timeouts all report false. 401 and
// 403 responses still indicate a live, owned host.
func (v *Validator) Validate(ctx context.Context, domain string) bool {
	domain = Normalize(domain)
	if domain == "" || !strings.Contains(domain, ".") {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, v.probeURL(domain), nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; RivalScan/1.0)")

	resp, err := v.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if isParked(resp.Header.Get("Server")) {
		return false
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return true
	default:
		return false
	}
}

// ValidateBatch probes the given domains with bounded concurrency and returns
// the subset that validated, preserving input order.
func (v *Validator) ValidateBatch(ctx context.Context, candidates []string) []string {
	if len(candidates) == 0 {
		return nil
	}

	results := make([]bool, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ValidateConcurrency)
	for i, domain := range candidates {
		i, domain := i, domain
		g.Go(func() error {
			results[i] = v.Validate(gctx, domain)
			return nil
		})
	}
	// Workers never return errors; Wait is only a join point.
	_ = g.Wait()

	valid := make([]string, 0, len(candidates))
	for i, ok := range results {
		if ok {
			valid = append(valid, candidates[i])
		}
	}
	return valid
}

func isParked(server string) bool {
	server = strings.ToLower(server)
	if server == "" {
		return false
	}
	for _, sig := range parkingServerSignatures {
		if strings.Contains(server, sig) {
			return true
		}
	}
	return false
}
