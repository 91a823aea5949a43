package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// getJSON issues one GET and decodes the body into out. Failures come
// back as *ProviderError so the chain can classify them without
// string matching.
func getJSON(ctx context.Context, doer httpDoer, provider, symbol, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &ProviderError{Provider: provider, Symbol: symbol, Kind: FailurePermanent, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := doer.Do(req)
	if err != nil {
		return &ProviderError{Provider: provider, Symbol: symbol, Kind: classifyErr(err), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &ProviderError{Provider: provider, Symbol: symbol, Kind: FailureTransient, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return &ProviderError{
			Provider: provider,
			Symbol:   symbol,
			Kind:     classifyStatus(resp.StatusCode),
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("%s", http.StatusText(resp.StatusCode)),
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &ProviderError{Provider: provider, Symbol: symbol, Kind: FailurePermanent, Err: fmt.Errorf("malformed payload: %w", err)}
	}
	return nil
}

const (
	// Some providers gate on a browser-looking UA.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	maxResponseBytes = 4 << 20
)
