package loadgen

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/okian/tourdesk/internal/domain/types"
)

// verifyListing pages through GET /requests?search=tag and checks that the
// filtered total matches the accepted submissions and that every accepted
// uid appears on exactly one page.
func verifyListing(ctx context.Context, client *HTTPClient, cfg *Config, tag string, accepted []string, stats *Stats) error {
	pageSize := cfg.PageSize
	if pageSize < 1 {
		pageSize = 10
	}

	seen := make(map[string]int, len(accepted))
	total := -1
	for page := 1; total < 0 || (page-1)*pageSize < total; page++ {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		q.Set("pageSize", strconv.Itoa(pageSize))
		q.Set("search", tag)

		status, body, err := client.Get(ctx, cfg.BaseURL+"/requests?"+q.Encode())
		if err != nil {
			return fmt.Errorf("%w: page %d: %w", ErrVerification, page, err)
		}
		if status != http.StatusOK {
			return fmt.Errorf("%w: page %d returned status %d", ErrVerification, page, status)
		}

		var result types.Page
		if err := json.Unmarshal(body, &result); err != nil {
			return fmt.Errorf("%w: page %d: %w", ErrVerification, page, err)
		}
		if total >= 0 && result.TotalItems != total {
			return fmt.Errorf("%w: totalItems changed from %d to %d mid-run", ErrVerification, total, result.TotalItems)
		}
		total = result.TotalItems
		stats.PagesRead++

		for _, r := range result.Requests {
			seen[r.UserID]++
		}
	}
	stats.ListedTotal = total

	if total != len(accepted) {
		return fmt.Errorf("%w: totalItems %d, accepted %d", ErrVerification, total, len(accepted))
	}
	for _, uid := range accepted {
		switch n := seen[uid]; n {
		case 1:
		case 0:
			return fmt.Errorf("%w: uid %s missing from listing", ErrVerification, uid)
		default:
			return fmt.Errorf("%w: uid %s listed %d times", ErrVerification, uid, n)
		}
	}
	return nil
}
