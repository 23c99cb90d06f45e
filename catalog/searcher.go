// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spezifisch/tunebar/logger"
)

const (
	DefaultDebounce = 500 * time.Millisecond
	DefaultTimeout  = 10 * time.Second
)

// Backend is anything that can answer a catalog query; *Client is the real one.
type Backend interface {
	Search(ctx context.Context, query string) ([]Track, error)
}

// Presenter receives search outcomes. Exactly one of SearchOK, SearchEmpty and
// SearchFailed follows a SearchStarted, unless the search was superseded.
type Presenter interface {
	SearchStarted(query string)
	SearchOK(query string, tracks []Track)
	SearchEmpty(query string)
	SearchFailed(query string, err error)
	SearchCleared()
}

type LoadingIndicator interface {
	ShowLoading()
	HideLoading()
}

// Searcher debounces free-text input into catalog requests. Only the latest
// issued request may deliver an outcome; older ones are dropped.
type Searcher struct {
	Delay   time.Duration
	Timeout time.Duration

	backend   Backend
	presenter Presenter
	loading   LoadingIndicator
	logger    logger.LoggerInterface

	mu         sync.Mutex
	timer      *time.Timer
	debounce   uint64 // bumped per keystroke; a timer only fires for the latest
	generation uint64 // bumped per issued request
	cancel     context.CancelFunc
	closed     bool
}

func NewSearcher(backend Backend, presenter Presenter, loading LoadingIndicator, logger logger.LoggerInterface) *Searcher {
	return &Searcher{
		Delay:   DefaultDebounce,
		Timeout: DefaultTimeout,

		backend:   backend,
		presenter: presenter,
		loading:   loading,
		logger:    logger,
	}
}

// Query takes the current content of the search box.
func (s *Searcher) Query(text string) {
	query := strings.TrimSpace(text)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.debounce++
	token := s.debounce
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	if query == "" {
		s.invalidateLocked()
		s.mu.Unlock()
		s.presenter.SearchCleared()
		return
	}

	s.timer = time.AfterFunc(s.Delay, func() {
		s.fire(token, query)
	})
	s.mu.Unlock()
}

// Close stops the debounce timer and discards whatever is still in flight.
func (s *Searcher) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.invalidateLocked()
}

func (s *Searcher) invalidateLocked() {
	s.generation++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Searcher) fire(token uint64, query string) {
	s.mu.Lock()
	if s.closed || token != s.debounce {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.invalidateLocked()
	gen := s.generation
	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	s.cancel = cancel
	s.mu.Unlock()

	s.run(ctx, cancel, gen, query)
}

func (s *Searcher) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && gen == s.generation
}

func (s *Searcher) run(ctx context.Context, cancel context.CancelFunc, gen uint64, query string) {
	defer cancel()
	if s.loading != nil {
		s.loading.ShowLoading()
		defer s.loading.HideLoading()
	}

	s.presenter.SearchStarted(query)
	tracks, err := s.search(ctx, query)

	if !s.current(gen) {
		s.logger.Printf("search: dropping stale response for %q", query)
		return
	}

	switch {
	case err != nil:
		err = fmt.Errorf("%w: %w", ErrSearchFailed, err)
		s.logger.PrintError("Searcher", err)
		s.presenter.SearchFailed(query, err)
	case len(tracks) == 0:
		s.presenter.SearchEmpty(query)
	default:
		s.presenter.SearchOK(query, tracks)
	}
}

func (s *Searcher) search(ctx context.Context, query string) (tracks []Track, err error) {
	defer func() {
		if r := recover(); r != nil {
			tracks, err = nil, fmt.Errorf("backend panic: %v", r)
		}
	}()
	return s.backend.Search(ctx, query)
}
