package tree

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicolagi/nsfs/path"
	"github.com/nicolagi/nsfs/storage"
)

type fakeReplicator struct {
	mu          sync.Mutex
	nextID      int
	addOnce     bool
	invalidated [][]storage.Ref
}

func (f *fakeReplicator) Decide(_ path.Path, _ storage.Ref, replicas []storage.Ref, _ int, _ []storage.Ref) Decision {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addOnce || len(replicas) > 0 {
		return Decision{}
	}
	f.addOnce = true
	f.nextID++
	ref := storage.Ref{ID: fmt.Sprintf("replica%d", f.nextID)}
	return Decision{AddReplica: &ref, Desired: 1}
}

func (f *fakeReplicator) Invalidate(_ path.Path, replicas []storage.Ref) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := append([]storage.Ref(nil), replicas...)
	f.invalidated = append(f.invalidated, cp)
}

type fakeCommander struct {
	mu      sync.Mutex
	created []string
	deleted []string
}

func (f *fakeCommander) Create(ref storage.Ref, p path.Path) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, ref.ID+":"+p.String())
	return true, nil
}

func (f *fakeCommander) Delete(ref storage.Ref, p path.Path) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, ref.ID+":"+p.String())
	return true, nil
}

func mustPath(t *testing.T, s string) path.Path {
	t.Helper()
	p, err := path.New(s)
	require.NoError(t, err)
	return p
}

func newTestTree(t *testing.T, servers int) (*Tree, *fakeReplicator, *fakeCommander) {
	t.Helper()
	rep := &fakeReplicator{}
	cmd := &fakeCommander{}
	tr := New(rep, cmd)
	for i := 0; i < servers; i++ {
		_, err := tr.Register(storage.Ref{ID: fmt.Sprintf("s%d", i)}, nil)
		require.NoError(t, err)
	}
	return tr, rep, cmd
}

func TestCreateListDelete(t *testing.T) {
	tr, _, _ := newTestTree(t, 1)

	ok, err := tr.CreateDirectory(mustPath(t, "/d"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = tr.CreateFile(mustPath(t, "/d/f"))
	require.NoError(t, err)
	assert.True(t, ok)

	isDir, err := tr.IsDirectory(mustPath(t, "/d"))
	require.NoError(t, err)
	assert.True(t, isDir)

	isDir, err = tr.IsDirectory(mustPath(t, "/d/f"))
	require.NoError(t, err)
	assert.False(t, isDir)

	names, err := tr.List(mustPath(t, "/d"))
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"f"}, names); diff != "" {
		t.Errorf("directory listing mismatch (-want +got):\n%s", diff)
	}

	ok, err = tr.Delete(mustPath(t, "/d/f"))
	require.NoError(t, err)
	assert.True(t, ok)

	names, err = tr.List(mustPath(t, "/d"))
	require.NoError(t, err)
	assert.Empty(t, names)

	_, err = tr.GetStorage(mustPath(t, "/d/f"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateFileWithoutRegisteredServerIsIllegalState(t *testing.T) {
	tr, _, _ := newTestTree(t, 0)
	_, err := tr.CreateFile(mustPath(t, "/f"))
	assert.ErrorIs(t, err, ErrIllegalState)
}

func TestCreateDuplicateReturnsFalse(t *testing.T) {
	tr, _, _ := newTestTree(t, 1)
	ok, err := tr.CreateDirectory(mustPath(t, "/d"))
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = tr.CreateDirectory(mustPath(t, "/d"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteAtRootReturnsFalse(t *testing.T) {
	tr, _, _ := newTestTree(t, 1)
	ok, err := tr.Delete(path.Root())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegisterMergeDuplicates(t *testing.T) {
	tr, _, _ := newTestTree(t, 0)

	s1 := storage.Ref{ID: "s1"}
	dup, err := tr.Register(s1, []path.Path{mustPath(t, "/a/b"), mustPath(t, "/c")})
	require.NoError(t, err)
	assert.Empty(t, dup)

	s2 := storage.Ref{ID: "s2"}
	dup, err = tr.Register(s2, []path.Path{mustPath(t, "/a/b"), mustPath(t, "/d")})
	require.NoError(t, err)
	assert.Equal(t, []path.Path{mustPath(t, "/a/b")}, dup)

	ref, err := tr.GetStorage(mustPath(t, "/a/b"))
	require.NoError(t, err)
	assert.Equal(t, s1, ref)

	ref, err = tr.GetStorage(mustPath(t, "/c"))
	require.NoError(t, err)
	assert.Equal(t, s1, ref)

	ref, err = tr.GetStorage(mustPath(t, "/d"))
	require.NoError(t, err)
	assert.Equal(t, s2, ref)
}

func TestRegisterAlreadyRegistered(t *testing.T) {
	tr, _, _ := newTestTree(t, 0)
	ref := storage.Ref{ID: "s1"}
	_, err := tr.Register(ref, nil)
	require.NoError(t, err)
	_, err = tr.Register(ref, nil)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestHierarchicalSharedExclusive(t *testing.T) {
	defer leaktest.Check(t)()
	tr, _, _ := newTestTree(t, 1)
	_, err := tr.CreateDirectory(mustPath(t, "/a"))
	require.NoError(t, err)
	_, err = tr.CreateDirectory(mustPath(t, "/a/b"))
	require.NoError(t, err)
	_, err = tr.CreateFile(mustPath(t, "/a/b/c"))
	require.NoError(t, err)

	require.NoError(t, tr.Lock(mustPath(t, "/a"), false))

	done := make(chan error, 1)
	go func() {
		done <- tr.Lock(mustPath(t, "/a/b/c"), true)
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("exclusive lock on /a/b/c should not block behind a compatible shared lock on /a")
	}

	require.NoError(t, tr.Unlock(mustPath(t, "/a/b/c"), true))
	require.NoError(t, tr.Unlock(mustPath(t, "/a"), false))
}

func TestReaderCoalescingAndWriterFairness(t *testing.T) {
	defer leaktest.Check(t)()
	tr, _, _ := newTestTree(t, 1)
	p := mustPath(t, "/f")
	_, err := tr.CreateFile(p)
	require.NoError(t, err)

	require.NoError(t, tr.Lock(p, false)) // T1 holds shared

	order := make(chan string, 2)
	go func() {
		require.NoError(t, tr.Lock(p, true)) // T2 wants exclusive
		order <- "T2"
	}()
	time.Sleep(30 * time.Millisecond) // let T2 enqueue behind T1

	go func() {
		require.NoError(t, tr.Lock(p, false)) // T3 wants shared, must queue behind T2
		order <- "T3"
	}()
	time.Sleep(30 * time.Millisecond) // let T3 enqueue behind T2

	require.NoError(t, tr.Unlock(p, false)) // T1 releases

	select {
	case got := <-order:
		assert.Equal(t, "T2", got, "T2 (arrived first) must be granted before T3")
	case <-time.After(time.Second):
		t.Fatal("T2 never granted")
	}
	require.NoError(t, tr.Unlock(p, true))

	select {
	case got := <-order:
		assert.Equal(t, "T3", got)
	case <-time.After(time.Second):
		t.Fatal("T3 never granted")
	}
	require.NoError(t, tr.Unlock(p, false))
}

func TestInvalidationOnWrite(t *testing.T) {
	tr, rep, _ := newTestTree(t, 1)
	p := mustPath(t, "/f")
	_, err := tr.CreateFile(p)
	require.NoError(t, err)

	// Drive a shared acquisition that causes the fake replicator to add a
	// replica.
	require.NoError(t, tr.Lock(p, false))
	require.NoError(t, tr.Unlock(p, false))

	n, err := tr.resolve(p)
	require.NoError(t, err)
	require.NotEmpty(t, n.replicas, "fake replicator should have added a replica")

	require.NoError(t, tr.Lock(p, true))
	assert.Empty(t, n.replicas, "replicas must be empty at the moment the writer is granted")
	assert.Equal(t, 0, n.readCount)
	require.NoError(t, tr.Unlock(p, true))

	rep.mu.Lock()
	defer rep.mu.Unlock()
	assert.Len(t, rep.invalidated, 1)
	assert.Len(t, rep.invalidated[0], 1)
}

func TestUnlockWithoutLockIsIllegalState(t *testing.T) {
	tr, _, _ := newTestTree(t, 1)
	p := mustPath(t, "/f")
	_, err := tr.CreateFile(p)
	require.NoError(t, err)
	err = tr.Unlock(p, false)
	assert.ErrorIs(t, err, ErrIllegalState)
}

func TestUnlockMissingPathIsIllegalArg(t *testing.T) {
	tr, _, _ := newTestTree(t, 1)
	err := tr.Unlock(mustPath(t, "/missing"), false)
	assert.ErrorIs(t, err, ErrIllegalArg)
}

func TestQueueEmptyAfterLockUnlockPairs(t *testing.T) {
	defer leaktest.Check(t)()
	tr, _, _ := newTestTree(t, 1)
	p := mustPath(t, "/f")
	_, err := tr.CreateFile(p)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(exclusive bool) {
			defer wg.Done()
			require.NoError(t, tr.Lock(p, exclusive))
			require.NoError(t, tr.Unlock(p, exclusive))
		}(i%3 == 0)
	}
	wg.Wait()

	n, err := tr.resolve(p)
	require.NoError(t, err)
	assert.True(t, n.queue.Empty())
}

func TestDeleteCommandsPrimaryAndReplicas(t *testing.T) {
	tr, rep, cmd := newTestTree(t, 1)
	p := mustPath(t, "/f")
	_, err := tr.CreateFile(p)
	require.NoError(t, err)

	require.NoError(t, tr.Lock(p, false))
	require.NoError(t, tr.Unlock(p, false))
	_ = rep

	ok, err := tr.Delete(p)
	require.NoError(t, err)
	assert.True(t, ok)

	cmd.mu.Lock()
	defer cmd.mu.Unlock()
	assert.Contains(t, cmd.deleted, "s0:/f")
	assert.Contains(t, cmd.deleted, "replica1:/f")
}
