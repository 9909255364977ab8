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

package dataloader

import (
	"context"
	"fmt"
	"log/slog"
)

// BatchLoadJob performs a batch load to fetch data required by a list of tasks.
type BatchLoadJob struct {
	ctx    context.Context
	loader *DataLoader

	// Tasks processed by this job stored in a linked list
	tasks TaskList
}

// Run calls the BatchLoader of the loader with the job's tasks. Every task is completed when Run
// returns: a task the BatchLoader didn't complete, or every remaining task if the BatchLoader
// panics, is completed with an error.
func (job *BatchLoadJob) Run() {
	var (
		tasks       = &job.tasks
		config      = job.loader.config
		batchLoader = config.BatchLoader
		logger      = job.loader.logger
	)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("batch loader panicked",
				slog.String("loader", config.Name),
				slog.Any("panic", r))
			job.failIncomplete(fmt.Errorf("%T panicked when loading data: %v", batchLoader, r))
		}
	}()

	logger.Debug("dispatch batch load",
		slog.String("loader", config.Name),
		slog.Int("size", tasks.Len()))

	// Call BatchLoader to load data.
	batchLoader.Load(job.ctx, tasks)

	// Make sure that all tasks were completed. If not, complete it with an error.
	for taskIter, taskEnd := tasks.Begin(), tasks.End(); taskIter != taskEnd; taskIter = taskIter.Next() {
		task := taskIter.Task
		if !task.Completed() {
			logger.Warn("batch loader left a task incomplete",
				slog.String("loader", config.Name),
				slog.Any("key", task.Key()))
			task.SetError(fmt.Errorf("%T must complete every given data loading task with either a "+
				"value or an error but it doesn't complete task that loads data at key %v",
				batchLoader, task.Key()))
		}
	}
}

func (job *BatchLoadJob) failIncomplete(err error) {
	tasks := &job.tasks
	for taskIter, taskEnd := tasks.Begin(), tasks.End(); taskIter != taskEnd; taskIter = taskIter.Next() {
		if task := taskIter.Task; !task.Completed() {
			task.SetError(err)
		}
	}
}
