// Command catalogcheck verifies that every track of a catalog can be
// reached: remote URLs answer a HEAD request, local files decode.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/llehouerou/wavestv/internal/catalog"
	"github.com/llehouerou/wavestv/internal/engine"
	"github.com/llehouerou/wavestv/internal/mediacache"
	"github.com/llehouerou/wavestv/internal/player"
)

type result struct {
	album  string
	track  catalog.Track
	detail string
	err    error
}

func check(ctx context.Context, client *http.Client, t catalog.Track) (string, error) {
	kind := engine.KindFor(t.Type)
	if !mediacache.IsRemote(t.AudioURL) {
		info, err := player.Probe(ctx, mediacache.LocalPath(t.AudioURL))
		if err != nil {
			return kind.String(), err
		}
		return fmt.Sprintf("%s %s %s", kind, info.Codec, info.Duration.Round(time.Second)), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, t.AudioURL, nil)
	if err != nil {
		return kind.String(), err
	}
	resp, err := client.Do(req)
	if err != nil {
		return kind.String(), err
	}
	resp.Body.Close()
	if resp.StatusCode >= 400 {
		return kind.String(), fmt.Errorf("HTTP %s", resp.Status)
	}
	size := "unknown size"
	if resp.ContentLength > 0 {
		size = humanize.Bytes(uint64(resp.ContentLength))
	}
	return fmt.Sprintf("%s %s", kind, size), nil
}

func main() {
	path := flag.String("catalog", "", "catalog file (default: built-in catalog)")
	workers := flag.Int("j", 4, "concurrent checks")
	timeout := flag.Duration("timeout", 15*time.Second, "per-request timeout")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cat, err := catalog.LoadOrDefault(*path)
	if err != nil {
		logger.Error("load catalog", "err", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: *timeout}
	var results []result
	for _, a := range cat.Albums {
		for _, t := range a.Tracks {
			results = append(results, result{album: a.Title, track: t})
		}
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(max(*workers, 1))
	for i := range results {
		g.Go(func() error {
			r := &results[i]
			r.detail, r.err = check(ctx, client, r.track)
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(results, func(i, j int) bool { return results[i].album < results[j].album })
	failed := 0
	for _, r := range results {
		status := "ok"
		if r.err != nil {
			status = "FAIL " + r.err.Error()
			failed++
		}
		fmt.Printf("%-24s %-24s %-28s %s\n", r.album, r.track.Title, r.detail, status)
	}
	if failed > 0 {
		logger.Error("unreachable tracks", "count", failed, "total", len(results))
		os.Exit(1)
	}
}
