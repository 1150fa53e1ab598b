package closures

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestParseFeed(t *testing.T) {
	body := []byte(`<?xml version="1.0" encoding="utf-8"?>
<Closures>
	<Closure date="2025-12-26" name="Processor maintenance"/>
	<Closure date="2025-11-28" name="Day after Thanksgiving"/>
	<Closure date="bogus" name="Broken entry"/>
</Closures>`)

	dates, err := parseFeed(body, testLogger())
	if err != nil {
		t.Fatalf("parseFeed: %v", err)
	}
	if len(dates) != 2 {
		t.Fatalf("dates %d, want 2 (malformed entry dropped): %v", len(dates), dates)
	}
	if dates[0] != "2025-11-28" || dates[1] != "2025-12-26" {
		t.Errorf("dates not sorted ascending: %v", dates)
	}
}

func TestParseFeedEmpty(t *testing.T) {
	if _, err := parseFeed([]byte(`<Closures></Closures>`), testLogger()); err == nil {
		t.Fatal("empty feed must error")
	}
}

func TestParseFeedInvalidXML(t *testing.T) {
	if _, err := parseFeed([]byte(`not xml at all <<`), testLogger()); err == nil {
		t.Fatal("invalid XML must error")
	}
}
