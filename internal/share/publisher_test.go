package share

import (
	"strings"
	"testing"
	"time"

	"lottus/internal/domain"
	"lottus/internal/logger"
)

type fakeScheduler struct {
	urls []string
}

func (f *fakeScheduler) Schedule(url string) {
	f.urls = append(f.urls, url)
}

func setupPublisher(t *testing.T) (*Publisher, *fakeScheduler) {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	sched := &fakeScheduler{}
	pub := NewPublisher(NewCodec(log), "http://host:7777", sched, log)
	return pub, sched
}

func TestPublisherIgnoresChangesBeforeLoad(t *testing.T) {
	pub, sched := setupPublisher(t)

	pub.OnChange(domain.Document{Title: "too early"})

	if pub.URL() != "" {
		t.Fatalf("expected no URL before load, got %q", pub.URL())
	}
	if len(sched.urls) != 0 {
		t.Fatalf("scheduler called %d times before load", len(sched.urls))
	}
}

func TestPublisherPublishesAfterLoad(t *testing.T) {
	pub, sched := setupPublisher(t)
	pub.MarkLoaded()

	doc := domain.Document{
		Title:  "live",
		Verses: []domain.Verse{{Text: "go", Pause: time.Second}},
	}
	pub.OnChange(doc)

	url := pub.URL()
	if !strings.HasPrefix(url, "http://host:7777/") {
		t.Fatalf("unexpected URL %q", url)
	}
	if pub.Token() == "" {
		t.Fatal("expected a token after publish")
	}
	if len(sched.urls) != 1 || sched.urls[0] != url {
		t.Fatalf("expected one QR schedule for %q, got %v", url, sched.urls)
	}

	// The published token must decode back to the document.
	got, err := NewCodec(logger.New(logger.LevelOff, nil)).Decode(pub.Token())
	if err != nil {
		t.Fatalf("decoding published token: %v", err)
	}
	if !got.Equal(doc) {
		t.Fatalf("published token decodes to %+v", got)
	}
}

func TestPublisherReplacesURL(t *testing.T) {
	pub, sched := setupPublisher(t)
	pub.MarkLoaded()

	pub.OnChange(domain.Document{Title: "a"})
	first := pub.URL()
	pub.OnChange(domain.Document{Title: "b"})
	second := pub.URL()

	if first == second {
		t.Fatal("expected URL to change with the document")
	}
	if len(sched.urls) != 2 {
		t.Fatalf("expected 2 QR schedules, got %d", len(sched.urls))
	}
}
