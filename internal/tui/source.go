package tui

import (
	"context"
	"fmt"

	"github.com/pavelanni/quizdrill/internal/bank"
	"github.com/pavelanni/quizdrill/internal/model"
	"github.com/pavelanni/quizdrill/internal/quiz"
)

// Loaded is a normalized bank ready for a session.
type Loaded struct {
	Location  string
	Digest    string
	Questions []quiz.Question
}

// Source produces the questions for one session. It is called again on
// every retry so the bank is reshuffled.
type Source func(ctx context.Context) (Loaded, error)

// BankSource resolves the bank named by cfg, loads it and normalizes it.
func BankSource(loader *bank.Loader, cfg model.QuizConfig) Source {
	if loader == nil {
		loader = &bank.Loader{}
	}
	return func(ctx context.Context) (Loaded, error) {
		location, err := bank.Resolve(cfg)
		if err != nil {
			return Loaded{}, err
		}
		b, err := loader.Load(ctx, location)
		if err != nil {
			return Loaded{}, err
		}

		opts := []quiz.NormalizeOption{quiz.WithLimit(cfg.NumQuestions)}
		if !cfg.Shuffle {
			opts = append(opts, quiz.WithoutShuffle())
		}
		questions, err := quiz.Normalize(b.Questions, opts...)
		if err != nil {
			return Loaded{}, fmt.Errorf("normalize %s: %w", location, err)
		}
		return Loaded{Location: b.Source, Digest: b.Digest, Questions: questions}, nil
	}
}

// StaticSource serves a fixed question list.
func StaticSource(location string, questions []quiz.Question) Source {
	return func(context.Context) (Loaded, error) {
		return Loaded{Location: location, Questions: questions}, nil
	}
}
