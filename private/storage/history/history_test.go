// Copyright 2026 Anapaya Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package history_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpki-rp/validator/pkg/rpki/rsync"
	"github.com/rpki-rp/validator/pkg/rpki/tal"
	"github.com/rpki-rp/validator/private/runmetrics"
	"github.com/rpki-rp/validator/private/storage/history"
)

func newStore(t *testing.T) *history.Store {
	t.Helper()
	s, err := history.Open("file:"+t.Name(), true)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func run(complete bool, counts ...uint32) *runmetrics.Metrics {
	m := runmetrics.New()
	for i := 0; i+1 < len(counts); i += 2 {
		tm := runmetrics.NewTALMetrics(tal.NewInfo(string(rune('A'+i/2)), nil, nil))
		tm.ROAs = counts[i]
		tm.VRPs = counts[i+1]
		m.PushTAL(tm)
	}
	if !complete {
		m.SetRsync([]rsync.ModuleMetrics{{
			Module: "rsync://a.example/repo/",
			Status: rsync.Status{ExitCode: 23},
		}})
	}
	return m
}

func TestInsertRecent(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	first := run(true, 12, 30, 3, 4)
	id1, err := s.Insert(ctx, first)
	require.NoError(t, err)
	id2, err := s.Insert(ctx, run(false))
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	runs, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, id2, runs[0].ID)
	assert.False(t, runs[0].RsyncComplete)
	assert.Empty(t, runs[0].TALs)

	assert.Equal(t, id1, runs[1].ID)
	assert.True(t, runs[1].RsyncComplete)
	assert.Equal(t, uint64(15), runs[1].ROAs)
	assert.Equal(t, uint64(34), runs[1].VRPs)
	assert.Equal(t, first.Time().Truncate(time.Second), runs[1].CollectedAt)
	assert.Equal(t, []history.TAL{
		{Name: "A", ROAs: 12, VRPs: 30},
		{Name: "B", ROAs: 3, VRPs: 4},
	}, runs[1].TALs)

	runs, err = s.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id2, runs[0].ID)

	runs, err = s.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestPrune(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	var ids []int64
	for i := 0; i < 5; i++ {
		id, err := s.Insert(ctx, run(true, uint32(i), uint32(i)))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	deleted, err := s.Prune(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)

	runs, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[4], runs[0].ID)
	assert.Equal(t, ids[3], runs[1].ID)
	assert.Len(t, runs[1].TALs, 1)

	deleted, err = s.Prune(ctx, 2)
	require.NoError(t, err)
	assert.Zero(t, deleted)

	_, err = s.Prune(ctx, -1)
	assert.Error(t, err)
}

func TestReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := history.Open(path, false)
	require.NoError(t, err)
	_, err = s.Insert(ctx, run(true, 1, 2))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = history.Open(path, false)
	require.NoError(t, err)
	defer s.Close()
	runs, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
