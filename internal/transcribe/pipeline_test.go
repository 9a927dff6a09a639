package transcribe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"capgenius/internal/language"
	"capgenius/internal/services"
)

type fakeProvider struct {
	segments []Segment
	err      error
	block    bool
	got      Request
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Transcribe(ctx context.Context, req Request) ([]Segment, error) {
	f.got = req
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.segments, f.err
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func TestGenerateSortsAndMintsIDs(t *testing.T) {
	provider := &fakeProvider{segments: []Segment{
		{Start: 3, End: 4, Text: " later "},
		{Start: 1, End: 2, Text: "first"},
	}}
	pipeline := NewPipeline(provider, WithIDGenerator(sequentialIDs()))
	result, err := pipeline.Generate(context.Background(), Request{Video: []byte("v"), MimeType: "video/mp4", Language: "hi-en"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(result.Captions) != 2 {
		t.Fatalf("expected 2 captions, got %+v", result.Captions)
	}
	if result.Captions[0].Text != "first" || result.Captions[1].Text != "later" {
		t.Fatalf("expected sorted, trimmed captions: %+v", result.Captions)
	}
	if result.Captions[0].ID == "" || result.Captions[0].ID == result.Captions[1].ID {
		t.Fatalf("expected distinct ids: %+v", result.Captions)
	}
	if provider.got.Instruction != language.HinglishInstruction {
		t.Fatalf("expected Hinglish instruction, got %q", provider.got.Instruction)
	}
	if result.Language != "hi-en" || result.Provider != "fake" {
		t.Fatalf("unexpected result metadata: %+v", result)
	}
}

func TestGeneratePassesOtherLanguagesVerbatim(t *testing.T) {
	provider := &fakeProvider{segments: []Segment{}}
	pipeline := NewPipeline(provider)
	result, err := pipeline.Generate(context.Background(), Request{Video: []byte("v"), Language: "ja"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if provider.got.Instruction != "ja" {
		t.Fatalf("expected verbatim code, got %q", provider.got.Instruction)
	}
	if len(result.Captions) != 0 {
		t.Fatalf("expected zero captions, got %d", len(result.Captions))
	}
}

func TestGenerateRejectsInvalidSegments(t *testing.T) {
	tests := []Segment{
		{Start: -1, End: 1, Text: "neg"},
		{Start: 2, End: 2, Text: "zero"},
		{Start: 1, End: 2, Text: "  "},
	}
	for _, seg := range tests {
		provider := &fakeProvider{segments: []Segment{{Start: 0, End: 1, Text: "ok"}, seg}}
		_, err := NewPipeline(provider).Generate(context.Background(), Request{Video: []byte("v"), Language: "en"})
		if !errors.Is(err, ErrMalformedResponse) {
			t.Fatalf("segment %+v: expected ErrMalformedResponse, got %v", seg, err)
		}
	}
}

func TestGenerateValidatesInput(t *testing.T) {
	pipeline := NewPipeline(&fakeProvider{})
	if _, err := pipeline.Generate(context.Background(), Request{Video: []byte("v"), Language: "klingon"}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := pipeline.Generate(context.Background(), Request{Language: "en"}); !errors.Is(err, ErrEmptyVideo) {
		t.Fatalf("expected ErrEmptyVideo, got %v", err)
	}
}

func TestGenerateTimesOut(t *testing.T) {
	pipeline := NewPipeline(&fakeProvider{block: true}, WithTimeout(20*time.Millisecond))
	_, err := pipeline.Generate(context.Background(), Request{Video: []byte("v"), Language: "en"})
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if msg := UserMessage(err); msg == "" {
		t.Fatal("expected user message")
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string { return "Client.Timeout exceeded while awaiting headers" }
func (timeoutErr) Timeout() bool { return true }
func (timeoutErr) Temporary() bool { return true }

func TestGenerateProviderTimeoutNamesProvider(t *testing.T) {
	for _, providerErr := range []error{
		fmt.Errorf("post: %w", context.DeadlineExceeded),
		fmt.Errorf("post: %w", timeoutErr{}),
	} {
		pipeline := NewPipeline(&fakeProvider{err: providerErr}, WithTimeout(10*time.Second))
		_, err := pipeline.Generate(context.Background(), Request{Video: []byte("v"), Language: "en"})
		if !errors.Is(err, services.ErrTimeout) {
			t.Fatalf("expected timeout for %v, got %v", providerErr, err)
		}
		if strings.Contains(err.Error(), "within 10s") {
			t.Fatalf("message blames the pipeline budget: %v", err)
		}
		if !strings.Contains(err.Error(), "fake request timed out") {
			t.Fatalf("expected provider timeout message, got %v", err)
		}
	}
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pipeline := NewPipeline(&fakeProvider{block: true})
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := pipeline.Generate(ctx, Request{Video: []byte("v"), Language: "en"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestGenerateClassifiesProviderFailures(t *testing.T) {
	provider := &fakeProvider{err: fmt.Errorf("%w: boom", ErrRequestFailed)}
	_, err := NewPipeline(provider).Generate(context.Background(), Request{Video: []byte("v"), Language: "en"})
	if !errors.Is(err, ErrRequestFailed) || !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected request failure marked external, got %v", err)
	}

	provider = &fakeProvider{err: errors.New("socket closed")}
	_, err = NewPipeline(provider).Generate(context.Background(), Request{Video: []byte("v"), Language: "en"})
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected unknown errors to count as request failures, got %v", err)
	}
}

func TestSplitSegment(t *testing.T) {
	got := splitSegment(Segment{Start: 10, End: 13, Text: "one two three four five six"}, 4)
	if len(got) != 2 {
		t.Fatalf("expected 2 pieces, got %+v", got)
	}
	if got[0].Text != "one two three four" || got[0].Start != 10 || got[0].End != 12 {
		t.Fatalf("unexpected first piece: %+v", got[0])
	}
	if got[1].Text != "five six" || got[1].Start != 12 || got[1].End != 13 {
		t.Fatalf("unexpected second piece: %+v", got[1])
	}
	short := splitSegment(Segment{Start: 0, End: 1, Text: "  hi   there "}, 4)
	if len(short) != 1 || short[0].Text != "hi there" {
		t.Fatalf("unexpected short split: %+v", short)
	}
}
