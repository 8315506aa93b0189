package orchestrate

import (
	"bytes"
	"testing"

	"github.com/parapng/parapng/internal/bandplan"
	"github.com/parapng/parapng/internal/deflateband"
)

func TestRunCollatesInBandOrder(t *testing.T) {
	jobs := []Job{
		{Band: bandplan.Band{Index: 0}, Input: bytes.Repeat([]byte("aaaa"), 20)},
		{Band: bandplan.Band{Index: 1}, Input: bytes.Repeat([]byte("bbbb"), 20)},
		{Band: bandplan.Band{Index: 2, IsTail: true}, Input: bytes.Repeat([]byte("cccc"), 20)},
	}

	got, err := Run(jobs, 9)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("len(got) = %d, want 3", len(got))
	}
	for i, job := range jobs {
		want, err := deflateband.Compress(job.Input, job.Band.IsTail, 9)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got[i].Bytes, want.Bytes) {
			t.Errorf("job %d: record bytes mismatch", i)
		}
		if got[i].IsTail != job.Band.IsTail {
			t.Errorf("job %d: IsTail = %v, want %v", i, got[i].IsTail, job.Band.IsTail)
		}
	}
}

func TestRunPropagatesFirstFailure(t *testing.T) {
	jobs := []Job{
		{Band: bandplan.Band{Index: 0}, Input: []byte("ok")},
		{Band: bandplan.Band{Index: 1}, Input: []byte("also ok")},
	}
	// Force compressor init to fail by giving Run an out-of-range level;
	// every job shares the same level, so every job in the batch fails the
	// same way Compress would fail standalone.
	_, err := Run(jobs, -99)
	if err == nil {
		t.Fatal("expected an error for an invalid compression level")
	}
}

func TestRunSingleJob(t *testing.T) {
	jobs := []Job{{Band: bandplan.Band{Index: 0, IsTail: true}, Input: []byte("solo band")}}
	got, err := Run(jobs, 9)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || !got[0].IsTail {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestRunEmptyJobList(t *testing.T) {
	got, err := Run(nil, 9)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("len(got) = %d, want 0", len(got))
	}
}
