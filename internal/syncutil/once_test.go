/*
Copyright The GhostDock Authors.
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package syncutil

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"
)

func TestOnce_Do(t *testing.T) {
	var f []func() (any, error)
	for i := 0; i < 100; i++ {
		i := i
		f = append(f, func() (any, error) {
			return i + 1, errors.New(strconv.Itoa(i))
		})
	}

	once := NewOnce()
	first := make([]bool, len(f))
	result := make([]any, len(f))
	err := make([]error, len(f))
	var wg sync.WaitGroup
	for i := 0; i < len(f); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			first[i], result[i], err[i] = once.Do(context.Background(), f[i])
		}(i)
	}
	wg.Wait()

	target := -1
	for i := 0; i < len(f); i++ {
		if first[i] {
			if target != -1 {
				t.Fatalf("multiple first runs: %d and %d", target, i)
			}
			target = i
		}
	}
	if target == -1 {
		t.Fatal("no first run")
	}
	wantResult := target + 1
	wantErr := strconv.Itoa(target)
	for i := 0; i < len(f); i++ {
		if result[i] != wantResult {
			t.Errorf("Once.Do() result = %v, want %v", result[i], wantResult)
		}
		if err[i] == nil || err[i].Error() != wantErr {
			t.Errorf("Once.Do() error = %v, want %v", err[i], wantErr)
		}
	}
}

func TestOnce_Do_Retry(t *testing.T) {
	once := NewOnce()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	first, result, err := once.Do(ctx, func() (any, error) {
		return nil, context.Canceled
	})
	if first {
		t.Error("Once.Do() first = true, want false")
	}
	if result != nil {
		t.Errorf("Once.Do() result = %v, want nil", result)
	}
	if err != context.Canceled {
		t.Errorf("Once.Do() error = %v, want %v", err, context.Canceled)
	}

	// a cancelled execution does not poison the Once
	first, result, err = once.Do(ctx, func() (any, error) {
		return "result", nil
	})
	if !first {
		t.Error("Once.Do() first = false, want true")
	}
	if result != "result" {
		t.Errorf("Once.Do() result = %v, want %v", result, "result")
	}
	if err != nil {
		t.Errorf("Once.Do() error = %v", err)
	}
}
