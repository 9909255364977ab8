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
	"sync/atomic"
)

// Thunk returns the value loaded for a key. Calling a Thunk closes the batch window: if the data
// hasn't been loaded yet, the pending batch is dispatched on the calling goroutine before the
// result is returned. The signature matches what github.com/graphql-go/graphql accepts as a
// deferred field value.
type Thunk func() (interface{}, error)

// Result holds the outcome of one Thunk.
type Result struct {
	Value interface{}
	Err   error
}

// Collect calls every thunk in order and returns their outcomes at the same positions. An error in
// one position doesn't affect the others.
func Collect(thunks []Thunk) []Result {
	results := make([]Result, len(thunks))
	for i, thunk := range thunks {
		results[i].Value, results[i].Err = thunk()
	}
	return results
}

//===----------------------------------------------------------------------------------------====//
// Task
//===----------------------------------------------------------------------------------------====//

type taskResult struct {
	value interface{}
	err   error
}

// String implements fmt.Stringer to pretty-print taskResult.
func (result *taskResult) String() string {
	if result.err != nil {
		return fmt.Sprintf("an error (%v)", result.err)
	}
	return fmt.Sprintf("a value (%+v)", result.value)
}

// Task specifies key for BatchLoader to load data and provides storage to write result on
// completion. A task can be completed only once with either Complete or SetError.
type Task struct {
	key Key

	// The result is nil until the task completes. It could be accessed simultaneously from different
	// goroutines, so it is only updated with CompareAndSwap.
	result atomic.Pointer[taskResult]

	// Closed when result is set
	done chan struct{}

	// The next task in the list
	next *Task
}

func newTask(key Key) *Task {
	return &Task{
		key:  key,
		done: make(chan struct{}),
	}
}

// Key returns t.key.
func (t *Task) Key() Key {
	return t.key
}

func (t *Task) complete(newResult *taskResult) error {
	if !t.result.CompareAndSwap(nil, newResult) {
		return fmt.Errorf("task was already completed with %s but want to accept %s",
			t.result.Load(), newResult)
	}
	close(t.done)
	return nil
}

// Complete the task with the given value.
func (t *Task) Complete(value interface{}) error {
	return t.complete(&taskResult{value: value})
}

// SetError completes the task with an error value.
func (t *Task) SetError(err error) error {
	return t.complete(&taskResult{err: err})
}

// Completed returns true if the task has been completed (with either a value or an error.)
func (t *Task) Completed() bool {
	return t.result.Load() != nil
}

// wait blocks until the task completes or ctx is done.
func (t *Task) wait(ctx context.Context) (interface{}, error) {
	select {
	case <-t.done:
		result := t.result.Load()
		return result.value, result.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// thunk creates a Thunk that reads the task result. dispatch is called first if the task hasn't
// completed.
func (t *Task) thunk(ctx context.Context, dispatch func(ctx context.Context)) Thunk {
	return func() (interface{}, error) {
		if !t.Completed() {
			dispatch(ctx)
		}
		return t.wait(ctx)
	}
}

//===----------------------------------------------------------------------------------------====//
// TaskList
//===----------------------------------------------------------------------------------------====//

// TaskList represents a list of Task's stored in a linked list from first to last (both
// included). It provides an iterator to access the tasks in the list.
type TaskList struct {
	first *Task
	last  *Task
}

// Begin returns an iterator pointing to the first task in the list.
func (tasks *TaskList) Begin() TaskIterator {
	return TaskIterator{tasks.first}
}

// End returns an iterator refers to the pass-to-the-end task in the list.
func (tasks *TaskList) End() TaskIterator {
	if tasks.last != nil {
		return TaskIterator{tasks.last.next}
	}
	return TaskIterator{nil}
}

// Empty returns true if the TaskList doesn't contain any tasks.
func (tasks *TaskList) Empty() bool {
	return tasks.first == nil
}

// Len returns the number of tasks in the list.
func (tasks *TaskList) Len() int {
	n := 0
	for iter, end := tasks.Begin(), tasks.End(); iter != end; iter = iter.Next() {
		n++
	}
	return n
}

// Keys returns keys of the tasks in list order.
func (tasks *TaskList) Keys() []Key {
	var keys []Key
	for iter, end := tasks.Begin(), tasks.End(); iter != end; iter = iter.Next() {
		keys = append(keys, iter.Task.Key())
	}
	return keys
}

// push appends a task at the end of the list. This is an internal method make a task list
// externally immutable.
func (tasks *TaskList) push(task *Task) {
	last := tasks.last
	if last == nil {
		tasks.first = task
	} else {
		last.next = task
	}
	tasks.last = task
}

// TaskIterator is used to access Task in a TaskList.
//
// Example:
//
//	for taskIter, taskEnd := tasks.Begin(), tasks.End(); taskIter != taskEnd; taskIter = taskIter.Next() {
//		task := taskIter.Task
//		...
//	}
type TaskIterator struct {
	// The referring task by this iterator
	*Task
}

// Next returns a TaskIterator that refers to the Task next to the one referred by iter in the list.
// Note that it is an undefined behavior if iter doesn't refer to one of the task in the
// corresponding TaskList.
func (iter TaskIterator) Next() TaskIterator {
	return TaskIterator{iter.Task.next}
}
