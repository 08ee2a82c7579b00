package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/lemonberrylabs/rpncalc/pkg/api"
	grpcapi "github.com/lemonberrylabs/rpncalc/pkg/api/grpc"
	"github.com/lemonberrylabs/rpncalc/pkg/store"
	"github.com/lemonberrylabs/rpncalc/web"
)

// testEnv is a running HTTP + gRPC pair sharing one store.
type testEnv struct {
	baseURL string
	grpc    *grpcapi.Client
	store   *store.Store
}

// startEnv boots both servers on ephemeral localhost ports and stops them
// when the test finishes.
func startEnv(t *testing.T) *testEnv {
	t.Helper()
	s := store.New()

	httpLis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("http listen: %v", err)
	}
	server := api.New(s, api.Options{})
	web.New(s).Register(server.App())
	go server.Serve(httpLis)

	grpcLis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("grpc listen: %v", err)
	}
	grpcServer := grpcapi.New(s)
	go grpcServer.ServeListener(grpcLis)

	conn, err := grpc.NewClient(grpcLis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("grpc dial: %v", err)
	}

	t.Cleanup(func() {
		conn.Close()
		grpcServer.Stop()
		server.Shutdown()
	})

	env := &testEnv{
		baseURL: "http://" + httpLis.Addr().String(),
		grpc:    grpcapi.NewClient(conn),
		store:   s,
	}
	env.waitReady(t)
	return env
}

func (e *testEnv) waitReady(t *testing.T) {
	t.Helper()
	client := &http.Client{Timeout: time.Second}
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := client.Get(e.baseURL + "/v1/calculations")
		if err == nil {
			resp.Body.Close()
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("HTTP server did not become ready")
}

// postJSON posts body to path and decodes the JSON response.
func (e *testEnv) postJSON(t *testing.T, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	data, _ := json.Marshal(body)
	resp, err := http.Post(e.baseURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return decode(t, resp)
}

// getJSON fetches path and decodes the JSON response.
func (e *testEnv) getJSON(t *testing.T, path string) (int, map[string]interface{}) {
	t.Helper()
	resp, err := http.Get(e.baseURL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return decode(t, resp)
}

func decode(t *testing.T, resp *http.Response) (int, map[string]interface{}) {
	t.Helper()
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("invalid JSON (status %d): %s", resp.StatusCode, raw)
	}
	return resp.StatusCode, out
}

func num(v interface{}) string {
	return fmt.Sprintf("%v", v)
}
