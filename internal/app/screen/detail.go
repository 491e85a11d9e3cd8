package screen

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"sync"
)

// ErrStale is returned for a detail fetch that finished after a newer selection started.
var ErrStale = errors.New("screen: result superseded by a newer selection")

// Detail holds the record shown in a side panel or modal. Only the latest selection's
// result is ever kept.
type Detail[K comparable, T any] struct {
	mu    sync.Mutex
	gen   uint64
	key   K
	value *T
	state State
}

// Show selects key and fetches it. A result for a selection that has since been
// replaced is dropped and ErrStale returned.
func (d *Detail[K, T]) Show(ctx context.Context, key K, fetch func(ctx context.Context) (*T, error)) (*T, error) {
	d.mu.Lock()
	d.gen++
	gen := d.gen
	d.key = key
	d.value = nil
	d.state = StateLoading
	d.mu.Unlock()

	v, err := fetch(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.gen != gen {
		return nil, ErrStale
	}
	if err != nil {
		d.state = StateError
		return nil, err
	}
	d.value = v
	d.state = StateReady
	return v, nil
}

// Current returns the selected key, its value once loaded, and the panel state.
func (d *Detail[K, T]) Current() (K, *T, State) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.key, d.value, d.state
}

// Rows tracks per-row loading flags, e.g. a row whose extra data is being fetched.
type Rows struct {
	mu      sync.Mutex
	loading map[string]struct{}
}

// Begin marks key as loading. It returns false if it already was.
func (r *Rows) Begin(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loading == nil {
		r.loading = make(map[string]struct{})
	}
	if _, busy := r.loading[key]; busy {
		return false
	}
	r.loading[key] = struct{}{}
	return true
}

func (r *Rows) End(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.loading, key)
}

func (r *Rows) Loading(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, busy := r.loading[key]
	return busy
}

// Confirmation is the explicit step in front of every delete.
type Confirmation struct {
	Prompt string `json:"prompt"`
	Token  string `json:"token"`
}

// confirmKey signs confirmation tokens. It is random per process unless SetConfirmKey
// installs a shared one.
var confirmKey = func() []byte {
	k := make([]byte, 32)
	if _, err := rand.Read(k); err != nil {
		panic(err)
	}
	return k
}()

// SetConfirmKey installs a shared key so that every dashboard process started with it
// accepts the others' tokens. Call it before serving requests.
func SetConfirmKey(key []byte) {
	confirmKey = append([]byte(nil), key...)
}

// Confirm builds the prompt naming the record. The token is bound to scope, normally
// the session id, and must be sent back with the delete request.
func Confirm(scope, kind string, id int, name string) Confirmation {
	return Confirmation{
		Prompt: fmt.Sprintf("Tem certeza que deseja excluir %s \"%s\"?", kind, name),
		Token:  confirmToken(scope, kind, id),
	}
}

// Confirmed reports whether token confirms the deletion of kind/id within scope.
func Confirmed(scope, kind string, id int, token string) bool {
	return token != "" && hmac.Equal([]byte(token), []byte(confirmToken(scope, kind, id)))
}

func confirmToken(scope, kind string, id int) string {
	mac := hmac.New(sha256.New, confirmKey)
	mac.Write([]byte(scope + "\x00" + kind + "\x00" + strconv.Itoa(id)))
	return hex.EncodeToString(mac.Sum(nil)[:16])
}
