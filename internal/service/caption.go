package service

import (
	"context"
	"time"
)

// captions is the fixed pool suggestions are drawn from.
var captions = []string{
	"When you finally find the bug in your code after 5 hours",
	"Me explaining to my mom why I need a new graphics card",
	"That moment when your code works on the first try",
	"When someone asks if you tested your code before deploying",
	"My brain during a coding interview vs. my brain at work",
	"When the client says 'just one small change'",
	"How I think I look coding vs. How I actually look",
	"When you forget a semicolon and debug for 3 hours",
	"My code when my professor is checking it vs. when I'm alone",
	"When you write 100 lines of code without saving",
}

// CaptionService suggests captions for a meme. It is a stand-in for a real model:
// the prompt is ignored and a canned caption is returned after a simulated delay.
type CaptionService struct {
	random Random
	delay  time.Duration
}

// NewCaptionService creates a caption service; a nil random uses a clock-seeded source.
func NewCaptionService(random Random, delay time.Duration) *CaptionService {
	if random == nil {
		random = NewRandom()
	}
	return &CaptionService{random: random, delay: delay}
}

// Suggest waits for the configured delay and returns a caption.
// It returns ctx.Err() if ctx ends first.
func (s *CaptionService) Suggest(ctx context.Context, prompt string) (string, error) {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	return captions[s.random.IntN(len(captions))], nil
}
