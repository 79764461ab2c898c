package verse

import (
	"errors"
	"testing"
	"time"

	"lottus/internal/domain"
	"lottus/internal/logger"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(logger.New(logger.LevelOff, nil))
}

func TestAddAndSnapshot(t *testing.T) {
	s := setupStore(t)

	s.Add("first", 500*time.Millisecond)
	s.Add("second", 300*time.Millisecond)

	doc := s.Document()
	if len(doc.Verses) != 2 {
		t.Fatalf("expected 2 verses, got %d", len(doc.Verses))
	}
	if doc.Verses[0].Text != "first" || doc.Verses[0].Pause != 500*time.Millisecond {
		t.Fatalf("unexpected first verse: %+v", doc.Verses[0])
	}

	// Snapshots must be isolated from later mutations.
	s.Add("third", 0)
	if len(doc.Verses) != 2 {
		t.Fatalf("earlier snapshot mutated, now %d verses", len(doc.Verses))
	}
}

func TestUpdate(t *testing.T) {
	s := setupStore(t)
	s.Add("hello", time.Second)

	text := "goodbye"
	pause := 250 * time.Millisecond

	tests := []struct {
		name    string
		index   int
		patch   domain.VersePatch
		wantErr bool
	}{
		{"text only", 0, domain.VersePatch{Text: &text}, false},
		{"pause only", 0, domain.VersePatch{Pause: &pause}, false},
		{"negative index", -1, domain.VersePatch{Text: &text}, true},
		{"past end", 1, domain.VersePatch{Text: &text}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Update(tt.index, tt.patch)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrIndexOutOfRange) {
					t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}

	doc := s.Document()
	if doc.Verses[0].Text != "goodbye" {
		t.Fatalf("expected updated text, got %q", doc.Verses[0].Text)
	}
	if doc.Verses[0].Pause != 250*time.Millisecond {
		t.Fatalf("expected updated pause, got %s", doc.Verses[0].Pause)
	}
}

func TestDeletePreservesOrder(t *testing.T) {
	s := setupStore(t)
	for _, text := range []string{"a", "b", "c", "d"} {
		s.Add(text, 0)
	}

	if err := s.Delete(1); err != nil {
		t.Fatalf("delete: %v", err)
	}

	doc := s.Document()
	want := []string{"a", "c", "d"}
	if len(doc.Verses) != len(want) {
		t.Fatalf("expected %d verses, got %d", len(want), len(doc.Verses))
	}
	for i, w := range want {
		if doc.Verses[i].Text != w {
			t.Fatalf("verse %d: expected %q, got %q", i, w, doc.Verses[i].Text)
		}
	}

	if err := s.Delete(3); !errors.Is(err, domain.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestClearAndSetDocument(t *testing.T) {
	s := setupStore(t)
	s.SetTitle("morning run")
	s.Add("go", time.Second)

	s.Clear()
	doc := s.Document()
	if !doc.Empty() {
		t.Fatalf("expected empty document after clear, got %+v", doc)
	}

	s.SetDocument(domain.Document{
		Title:  "opened",
		Verses: []domain.Verse{{Text: "x", Pause: time.Second}},
	})
	doc = s.Document()
	if doc.Title != "opened" || len(doc.Verses) != 1 {
		t.Fatalf("unexpected document after SetDocument: %+v", doc)
	}
}

func TestListenersFireOnMutation(t *testing.T) {
	s := setupStore(t)

	var got []int
	s.Subscribe(func(d domain.Document) {
		got = append(got, len(d.Verses))
	})

	s.Add("one", 0)
	s.Add("two", 0)
	if err := s.Delete(0); err != nil {
		t.Fatalf("delete: %v", err)
	}

	want := []int{1, 2, 1}
	if len(got) != len(want) {
		t.Fatalf("expected %d notifications, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i] != w {
			t.Fatalf("notification %d: expected %d verses, got %d", i, w, got[i])
		}
	}
}

func TestFailedMutationDoesNotNotify(t *testing.T) {
	s := setupStore(t)
	s.Add("only", 0)

	fired := 0
	s.Subscribe(func(domain.Document) { fired++ })

	if err := s.Delete(5); err == nil {
		t.Fatal("expected error for out-of-range delete")
	}
	if fired != 0 {
		t.Fatalf("listener fired %d times for failed mutation", fired)
	}
}
