// Command probe is a deployment check: it hits /healthz and /readyz on a
// running server and exits non-zero when either fails.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/valyala/fasthttp"
)

func main() {
	base := flag.String("base", "http://127.0.0.1:8080", "base URL of the server")
	timeout := flag.Duration("timeout", 5*time.Second, "per-request timeout")
	flag.Parse()

	client := &fasthttp.Client{
		ReadTimeout:  *timeout,
		WriteTimeout: *timeout,
	}

	failed := false
	for _, path := range []string{"/healthz", "/readyz"} {
		status, body, err := check(client, *base+path, *timeout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed = true
			continue
		}
		if status != fasthttp.StatusOK {
			fmt.Fprintf(os.Stderr, "%s: status %d: %s\n", path, status, body)
			failed = true
			continue
		}
		fmt.Printf("%s: ok: %s\n", path, body)
	}
	if failed {
		os.Exit(1)
	}
}

func check(client *fasthttp.Client, url string, timeout time.Duration) (int, string, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	if err := client.DoTimeout(req, resp, timeout); err != nil {
		return 0, "", err
	}
	return resp.StatusCode(), string(resp.Body()), nil
}
