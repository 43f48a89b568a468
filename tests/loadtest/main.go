package main

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/samber/lo"
)

const (
	baseURL      = "http://127.0.0.1:8090"
	numWorkers   = 50
	testDuration = 10 * time.Second
	numAuthors   = 40
	numViewers   = 200
)

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

type openResponse struct {
	SessionID string `json:"sessionId"`
}

func main() {
	fmt.Println("=== StoryPlayer Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s\n", numWorkers, testDuration)
	fmt.Printf("Authors: %d | Viewers: %d\n\n", numAuthors, numViewers)

	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	fmt.Println("\n--- Phase 1: Publishing stories (POST /stories) ---")
	runPhase(testDuration/2, func(rng *rand.Rand) []result {
		return []result{doCreate(rng)}
	})

	fmt.Println("\n--- Phase 2: Listing (GET /stories) ---")
	runPhase(testDuration/2, func(rng *rand.Rand) []result {
		return []result{doList(rng)}
	})

	fmt.Println("\n--- Phase 3: Viewer sessions (open, input, snapshot, close) ---")
	runPhase(testDuration, doSession)
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) []result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					for _, r := range workFn(rng) {
						results <- r
					}
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := lo.Keys(allResults)
	sort.Strings(endpoints)

	fmt.Printf("\n  %-24s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 90))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		fmt.Printf("  %-24s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors,
			fmtDur(avgDuration(s.latencies)),
			fmtDur(percentile(s.latencies, 0.50)),
			fmtDur(percentile(s.latencies, 0.95)),
			fmtDur(percentile(s.latencies, 0.99)))
	}

	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + strings.Repeat("-", 90))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(max(totalOps, 1))*100, rps)
}

func call(method, endpoint, path, viewer string, body []byte, okStatus ...int) (result, []byte) {
	req, err := http.NewRequest(method, baseURL+path, bytes.NewReader(body))
	if err != nil {
		return result{endpoint: endpoint, err: true}, nil
	}
	if viewer != "" {
		req.Header.Set("X-Viewer-ID", viewer)
	}
	start := time.Now()
	resp, err := httpClient.Do(req)
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}, nil
	}
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	return result{endpoint, resp.StatusCode, lat, !lo.Contains(okStatus, resp.StatusCode)}, data
}

func doCreate(rng *rand.Rand) result {
	author := fmt.Sprintf("author-%d", rng.Intn(numAuthors))
	kind := lo.Ternary(rng.Float64() < 0.7, "image", "video")
	payload := map[string]interface{}{
		"mediaUrl":  fmt.Sprintf("https://cdn.example.com/%s/%d.%s", author, rng.Int63(), lo.Ternary(kind == "image", "jpg", "mp4")),
		"mediaKind": kind,
	}
	if rng.Float64() < 0.3 {
		payload["overlay"] = map[string]interface{}{"text": "hello", "x": 0.5, "y": 0.2}
	}
	data, _ := json.Marshal(payload)
	r, _ := call(http.MethodPost, "POST /stories", "/stories", author, data, http.StatusCreated)
	return r
}

func doList(rng *rand.Rand) result {
	viewer := fmt.Sprintf("viewer-%d", rng.Intn(numViewers))
	r, _ := call(http.MethodGet, "GET /stories", "/stories", viewer, nil, http.StatusOK)
	return r
}

// doSession plays one viewer session: open at a random author, feed a few
// inputs, read snapshots and close. A session that reached the end of the
// collection on its own answers 410 and then 404; neither counts as an error.
func doSession(rng *rand.Rand) []result {
	viewer := fmt.Sprintf("viewer-%d", rng.Intn(numViewers))
	r, body := call(http.MethodPost, "POST /viewer/open",
		fmt.Sprintf("/viewer/open?author=%d", rng.Intn(numAuthors/2)), viewer, nil, http.StatusOK)
	out := []result{r}
	if r.err {
		return out
	}
	var opened openResponse
	if err := json.Unmarshal(body, &opened); err != nil {
		out[0].err = true
		return out
	}
	s := "s=" + opened.SessionID

	for i := 0; i < rng.Intn(8)+2; i++ {
		var res result
		switch p := rng.Float64(); {
		case p < 0.5:
			x := lo.Ternary(rng.Float64() < 0.2, 40, 300)
			res, _ = call(http.MethodPost, "POST /viewer/tap",
				fmt.Sprintf("/viewer/tap?%s&x=%d&y=400&w=390&h=844", s, x), viewer, nil, http.StatusOK, http.StatusGone, http.StatusNotFound)
		case p < 0.65:
			res, _ = call(http.MethodPost, "POST /viewer/hold", "/viewer/hold?"+s+"&phase=start", viewer, nil, http.StatusOK, http.StatusGone, http.StatusNotFound)
			out = append(out, res)
			res, _ = call(http.MethodPost, "POST /viewer/hold", "/viewer/hold?"+s+"&phase=end", viewer, nil, http.StatusOK, http.StatusGone, http.StatusNotFound)
		case p < 0.75:
			res, _ = call(http.MethodPost, "POST /viewer/pan",
				fmt.Sprintf("/viewer/pan?%s&phase=end&dx=-%d&dy=4&vx=-600&vy=0", s, rng.Intn(120)), viewer, nil, http.StatusOK, http.StatusGone, http.StatusNotFound)
		default:
			res, _ = call(http.MethodGet, "GET /viewer/snapshot", "/viewer/snapshot?"+s, viewer, nil, http.StatusOK, http.StatusGone, http.StatusNotFound)
		}
		out = append(out, res)
	}

	res, _ := call(http.MethodPost, "POST /viewer/close", "/viewer/close?"+s, viewer, nil, http.StatusNoContent, http.StatusNotFound)
	return append(out, res)
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dus", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}
