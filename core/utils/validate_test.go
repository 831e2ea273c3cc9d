package utils

import (
	"bytes"
	"strings"
	"testing"
)

func TestValidators(t *testing.T) {
	for _, ok := range []string{"0b5e6f0c-6a37-4c1e-9a9f-0c8d8a3b6c11", "session_01"} {
		if err := ValidateSessionID(ok); err != nil {
			t.Fatalf("%s: %v", ok, err)
		}
	}
	for _, bad := range []string{"short", "has space here", strings.Repeat("a", 65)} {
		if ValidateSessionID(bad) == nil {
			t.Fatalf("%q: expected error", bad)
		}
	}
	if ValidateSlug("primary-energy") != nil || ValidateSlug("Primary") == nil || ValidateSlug("a--b") == nil {
		t.Fatalf("unexpected slug validation")
	}
	for _, ok := range []string{"75rem", "600px", "100%", "42.5vh"} {
		if err := ValidateChartHeight(ok); err != nil {
			t.Fatalf("%s: %v", ok, err)
		}
	}
	for _, bad := range []string{"", "75", "1rem;color:red", "calc(1px)"} {
		if ValidateChartHeight(bad) == nil {
			t.Fatalf("%q: expected error", bad)
		}
	}
}

func TestRandStringIsURLSafe(t *testing.T) {
	s, err := RandString(48)
	if err != nil {
		t.Fatalf("rand: %v", err)
	}
	if strings.ContainsAny(s, "+/=") {
		t.Fatalf("expected url safe string, got %s", s)
	}
	if !ConstantTimeEquals([]byte(s), []byte(s)) || ConstantTimeEquals([]byte(s), []byte(s+"x")) {
		t.Fatalf("unexpected constant time comparison")
	}
}

func TestLoggerWarnings(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf)
	l.Warnf("dimension %s not available", "byGas")
	if !strings.Contains(buf.String(), "level=WARN") || !strings.Contains(buf.String(), "byGas") {
		t.Fatalf("unexpected log output %q", buf.String())
	}
	var nilLogger *Logger
	nilLogger.Printf("ignored")
	if Sha256Hex([]byte("a")) != "ca978112ca1bbdcafac231b39a23dc4da786eff8147c4e72b9807785afee48bb" {
		t.Fatalf("unexpected digest")
	}
}
