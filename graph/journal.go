/**
 * Copyright (c) 2019, The Artemis Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// step is a write applied by a journal together with the action that reverts it.
type step struct {
	name       string
	compensate func(ctx context.Context) error
}

// journal records the steps of one multi-write mutation. When a step fails, the steps applied so
// far are compensated in reverse order.
type journal struct {
	op      Op
	logger  *slog.Logger
	metrics *Metrics
	applied []step
}

func newJournal(op Op, logger *slog.Logger, metrics *Metrics) *journal {
	return &journal{
		op:      op,
		logger:  logger,
		metrics: metrics,
	}
}

// do runs apply. On success, compensate is recorded for rollback. On failure, the journal is rolled
// back and the returned error describes both the failure and the rollback.
func (j *journal) do(ctx context.Context, name string, apply func(ctx context.Context) error, compensate func(ctx context.Context) error) error {
	if err := apply(ctx); err != nil {
		return j.rollback(ctx, name, err)
	}
	j.applied = append(j.applied, step{
		name:       name,
		compensate: compensate,
	})
	return nil
}

func (j *journal) rollback(ctx context.Context, failed string, cause error) error {
	// Compensate even if the request was canceled.
	ctx = context.WithoutCancel(ctx)

	var failures []error
	for i := len(j.applied) - 1; i >= 0; i-- {
		s := j.applied[i]
		err := s.compensate(ctx)
		j.metrics.observeCompensation(j.op, err)
		if err != nil {
			j.logger.Warn("compensation failed",
				slog.String("op", string(j.op)),
				slog.String("step", s.name),
				slog.Any("error", err))
			failures = append(failures, fmt.Errorf("undo %s: %w", s.name, err))
		}
	}
	numApplied := len(j.applied)
	j.applied = nil

	cause = fmt.Errorf("%s: %w", failed, cause)
	if len(failures) > 0 {
		return NewError("storage failure, rollback incomplete", j.op, ErrKindStorage,
			errors.Join(append([]error{cause}, failures...)...))
	}

	if numApplied > 0 {
		j.logger.Debug("mutation rolled back",
			slog.String("op", string(j.op)),
			slog.String("step", failed),
			slog.Int("compensated", numApplied))
	}
	return NewError("storage failure, changes rolled back", j.op, ErrKindStorage, cause)
}
