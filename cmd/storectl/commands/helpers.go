package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/systmms/storectl/internal/api"
	"github.com/systmms/storectl/internal/config"
	"github.com/systmms/storectl/internal/dashboard"
	sterrors "github.com/systmms/storectl/internal/errors"
	"github.com/systmms/storectl/internal/lifecycle"
	"github.com/systmms/storectl/internal/syncache"
)

// newAPIClient builds the provisioning API client from loaded configuration.
func newAPIClient(cfg *config.Config) (*api.Client, error) {
	return api.NewClient(api.ClientConfig{
		BaseURL: cfg.Definition.APIURL,
		Token:   cfg.ResolveToken(),
		Timeout: cfg.Definition.RequestTimeout(),
	})
}

// newService wires client and cache into the dashboard service. The caller
// owns the returned cache and must Close it.
func newService(cfg *config.Config) (*dashboard.Service, *syncache.Cache, error) {
	client, err := newAPIClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	cache := syncache.New(cfg.Definition.PollInterval(), cfg.Logger)
	return dashboard.New(client, cache, cfg.Logger), cache, nil
}

// waitInitial blocks until a cache key has its first value or its first
// fetch failed with nothing cached. Read-path errors after the first load
// degrade to staleness and never reach here.
func waitInitial(cache *syncache.Cache, key string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if _, ok := cache.Get(key); ok {
			return nil
		}
		if err := cache.InitialError(key); err != nil {
			return sterrors.UserError{
				Message:    "Cannot reach the provisioning API",
				Details:    err.Error(),
				Suggestion: "Check api_url in storectl.yaml and that the control plane is running",
			}
		}
		if time.Now().After(deadline) {
			return sterrors.UserError{
				Message:    "Timed out waiting for the provisioning API",
				Suggestion: "Check api_url in storectl.yaml and that the control plane is running",
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
}

var toneColors = map[lifecycle.Tone]string{
	lifecycle.ToneSuccess: "\033[32m",
	lifecycle.ToneWarning: "\033[33m",
	lifecycle.ToneDanger:  "\033[31m",
	lifecycle.ToneMuted:   "\033[2m",
}

// statusBadge renders a store status with its lifecycle presentation.
func statusBadge(status string, noColor bool) string {
	p := lifecycle.PresentationFor(lifecycle.Status(status))
	label := p.Label
	if p.Busy {
		label = "⟳ " + label
	}
	if noColor {
		return label
	}
	if color, ok := toneColors[p.Tone]; ok {
		return color + label + "\033[0m"
	}
	return label
}

// renderStoreTable writes the store collection as an aligned table.
func renderStoreTable(w io.Writer, stores []api.Store, noColor bool) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tENGINE\tSTATUS\tURL\tID")
	for _, store := range stores {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			store.Name,
			store.Engine,
			statusBadge(store.Status, noColor),
			strOrDash(store.URL),
			store.ID,
		)
	}
	_ = tw.Flush()
}

func strOrDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

// confirm asks a yes/no question on the given reader. Non-interactive runs
// must pass --yes instead.
func confirm(r io.Reader, w io.Writer, prompt string) bool {
	fmt.Fprintf(w, "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
