//go:build integration

package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConcurrentModelDownloadsShareOneTransfer(t *testing.T) {
	payload := []byte("ggml model weights for voxsub")
	sum := sha256.Sum256(payload)

	target := filepath.Join(t.TempDir(), "ggml-tiny.bin")
	checksums := fmt.Sprintf("%s  %s\n", hex.EncodeToString(sum[:]), filepath.Base(target))

	var modelHits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ggml-tiny.bin":
			if modelHits.Add(1) == 1 {
				// First transfer declares more bytes than it sends.
				w.Header().Set("Content-Length", strconv.Itoa(len(payload)*2))
				_, _ = w.Write(payload)
				return
			}
			_, _ = w.Write(payload)
		case "/checksums.txt":
			_, _ = w.Write([]byte(checksums))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	opts := Options{
		URL:         server.URL + "/ggml-tiny.bin",
		Destination: target,
		ChecksumURL: server.URL + "/checksums.txt",
		NoProgress:  true,
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = DownloadFile(context.Background(), opts)
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	require.EqualValues(t, 2, modelHits.Load(), "one truncated transfer, one retry, and the second caller reuses the file")

	onDisk, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, payload, onDisk)
	require.NoFileExists(t, target+".part")
}
