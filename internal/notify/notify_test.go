package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Nomadcxx/mediashelf/internal/movie"
)

type mockNotifier struct {
	name      string
	enabled   bool
	pingErr   error
	notifyErr error

	mu    sync.Mutex
	calls [][]Change
}

func (m *mockNotifier) Name() string               { return m.name }
func (m *mockNotifier) Enabled() bool              { return m.enabled }
func (m *mockNotifier) Ping(context.Context) error { return m.pingErr }
func (m *mockNotifier) Notify(_ context.Context, changes []Change) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, changes)
	return m.notifyErr
}

func TestManagerRegister(t *testing.T) {
	mgr := NewManager(nil)

	mgr.Register(&mockNotifier{name: "enabled", enabled: true})
	mgr.Register(&mockNotifier{name: "disabled", enabled: false})

	if mgr.NotifierCount() != 1 {
		t.Errorf("expected 1 notifier, got %d", mgr.NotifierCount())
	}
}

func TestManagerFlush(t *testing.T) {
	mgr := NewManager(nil)
	ok := &mockNotifier{name: "ok", enabled: true}
	failing := &mockNotifier{name: "failing", enabled: true, notifyErr: errors.New("boom")}
	mgr.Register(ok)
	mgr.Register(failing)

	if results := mgr.Flush(context.Background()); results != nil {
		t.Fatalf("expected no results for an empty queue, got %v", results)
	}

	mgr.Queue(Change{Kind: Created, Title: "Alien", Path: "/movies/Alien"})
	results := mgr.Flush(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Service != "ok" || results[0].Error != nil || results[0].Changes != 1 {
		t.Errorf("unexpected result %+v", results[0])
	}
	if results[1].Error == nil {
		t.Error("expected error from failing notifier")
	}
	if mgr.Pending() != 0 {
		t.Errorf("expected empty queue after flush, got %d", mgr.Pending())
	}
	if len(ok.calls) != 1 || len(ok.calls[0]) != 1 {
		t.Errorf("unexpected calls %v", ok.calls)
	}
}

func TestManagerQueueCollapses(t *testing.T) {
	tests := []struct {
		name  string
		kinds []ChangeKind
		want  []ChangeKind
	}{
		{"created then modified", []ChangeKind{Created, Modified}, []ChangeKind{Created}},
		{"created then deleted", []ChangeKind{Created, Deleted}, nil},
		{"deleted then created", []ChangeKind{Deleted, Created}, []ChangeKind{Modified}},
		{"modified then deleted", []ChangeKind{Modified, Deleted}, []ChangeKind{Deleted}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr := NewManager(nil)
			n := &mockNotifier{name: "n", enabled: true}
			mgr.Register(n)

			mgr.Queue(Change{Kind: Modified, Path: "/movies/Heat"})
			for _, k := range tt.kinds {
				mgr.Queue(Change{Kind: k, Path: "/movies/Alien"})
			}
			mgr.Flush(context.Background())

			var got []ChangeKind
			for _, c := range n.calls[0] {
				if c.Path == "/movies/Alien" {
					got = append(got, c.Kind)
				}
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
				}
			}
			if n.calls[0][0].Path != "/movies/Heat" {
				t.Errorf("expected unrelated change to stay first, got %+v", n.calls[0])
			}
		})
	}
}

func TestManagerAttach(t *testing.T) {
	mgr := NewManager(nil)
	lib := movie.NewLibrary()
	cancel := mgr.Attach(lib)

	lib.AddMovieSet(movie.NewMovieSet("Alien Collection"))
	m := movie.NewMovie("Alien", 1979, "/movies/Alien")
	lib.AddMovie(m)
	lib.UpdateMovie(m)
	h := movie.NewMovie("Heat", 1995, "/movies/Heat")
	lib.AddMovie(h)
	lib.RemoveMovie(h.ID)
	cancel()
	lib.RemoveMovie(m.ID)

	if mgr.Pending() != 1 {
		t.Fatalf("expected 1 pending change, got %d", mgr.Pending())
	}
	n := &mockNotifier{name: "n", enabled: true}
	mgr.Register(n)
	mgr.Flush(context.Background())
	c := n.calls[0][0]
	if c.Kind != Created || c.Title != "Alien" || c.Year != 1979 {
		t.Errorf("unexpected change %+v", c)
	}
}

func TestFormatChange(t *testing.T) {
	tests := []struct {
		change   Change
		expected string
	}{
		{Change{Kind: Created, Title: "Inception", Year: 2010}, "Created: Inception (2010)"},
		{Change{Kind: Deleted, Title: "Heat"}, "Deleted: Heat"},
		{Change{Kind: ChangeKind(9), Title: "X"}, "unknown: X"},
	}

	for _, tt := range tests {
		if got := FormatChange(tt.change); got != tt.expected {
			t.Errorf("FormatChange() = %s, want %s", got, tt.expected)
		}
	}
}

func TestManagerPingAll(t *testing.T) {
	mgr := NewManager(nil)
	mgr.Register(&mockNotifier{name: "healthy", enabled: true})
	mgr.Register(&mockNotifier{name: "down", enabled: true, pingErr: errors.New("refused")})

	results := mgr.PingAll(context.Background())

	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
	if results["healthy"] != nil {
		t.Error("expected nil error for healthy notifier")
	}
	if results["down"] == nil {
		t.Error("expected error for unreachable notifier")
	}
}
