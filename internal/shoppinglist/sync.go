package shoppinglist

import (
	"context"
	"errors"

	"lista-zakupow/internal/models"
	"lista-zakupow/internal/remote"
)

// schedulePushLocked (re)arms the debounce timer. Every call supersedes the
// previous timer, so a burst of edits inside one window yields one push that
// carries the latest items.
func (m *Machine) schedulePushLocked() {
	if m.closed {
		return
	}
	m.pushPending = true
	m.pushGen++
	if m.pushTimer != nil {
		m.pushTimer.Stop()
	}
	gen := m.pushGen
	m.pushTimer = m.clock.AfterFunc(m.debounce, func() {
		m.pushFromTimer(gen)
	})
}

func (m *Machine) cancelPushLocked() {
	m.pushPending = false
	m.pushGen++
	if m.pushTimer != nil {
		m.pushTimer.Stop()
		m.pushTimer = nil
	}
}

type pushJob struct {
	shareID string
	items   []models.ShoppingItem
	rev     uint64
}

// takePushLocked claims the pending push, if any.
func (m *Machine) takePushLocked() (pushJob, bool) {
	if !m.pushPending || !m.isShared || m.list == nil {
		return pushJob{}, false
	}
	m.cancelPushLocked()
	m.loading++
	return pushJob{
		shareID: m.shareMeta.ShareID,
		items:   models.CloneItems(m.list.Items),
		rev:     m.rev,
	}, true
}

func (m *Machine) pushFromTimer(gen uint64) {
	m.mu.Lock()
	if gen != m.pushGen {
		m.mu.Unlock()
		return
	}
	job, ok := m.takePushLocked()
	m.mu.Unlock()
	if !ok {
		return
	}
	if err := m.push(context.Background(), job); err != nil {
		m.log.Warn("Shared list push failed", "share_id", job.shareID, "error", err)
	}
}

// Flush sends a pending debounced push right away. It returns nil when
// nothing was pending or when the server is unreachable, in which case the
// local snapshot stays the source of truth.
func (m *Machine) Flush(ctx context.Context) error {
	m.mu.Lock()
	job, ok := m.takePushLocked()
	m.mu.Unlock()
	if !ok {
		return nil
	}
	return m.push(ctx, job)
}

func (m *Machine) push(ctx context.Context, job pushJob) error {
	result, err := m.remote.UpdateShare(ctx, job.shareID, job.items)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading--

	if m.shareMeta.ShareID != job.shareID || m.list == nil {
		return nil
	}

	switch {
	case err == nil:
		m.lastSync = max(m.lastSync, result.Metadata.UpdatedAt)
		if m.rev == job.rev {
			m.list.UpdatedAt = max(m.list.UpdatedAt, result.Metadata.UpdatedAt)
			m.persistLocked()
		}
		return nil
	case errors.Is(err, remote.ErrUnavailable):
		// Local-only sharing: the snapshot written by mutate is what others
		// on this device will read.
		m.lastSync = max(m.lastSync, m.list.UpdatedAt)
		return nil
	default:
		return err
	}
}

// Poll runs one inbound sync cycle. Newer remote content replaces the local
// items wholesale; a cycle is skipped while a local push is pending.
func (m *Machine) Poll(ctx context.Context) error {
	m.mu.Lock()
	if !m.isShared {
		m.mu.Unlock()
		return ErrNotShared
	}
	if m.pushPending {
		m.mu.Unlock()
		return nil
	}
	shareID := m.shareMeta.ShareID
	since := m.lastSync
	m.mu.Unlock()

	content, err := m.fetchForPoll(ctx, shareID, since)
	if err != nil || content == nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pushPending || m.shareMeta.ShareID != shareID || m.list == nil {
		return nil
	}
	if content.UpdatedAt <= m.lastSync {
		return nil
	}

	m.list.Items = models.CloneItems(content.Items)
	if content.CreatedAt > 0 {
		m.list.CreatedAt = content.CreatedAt
	}
	m.list.UpdatedAt = max(m.list.UpdatedAt, content.UpdatedAt)
	m.lastSync = content.UpdatedAt
	m.rev++
	m.persistLocked()
	m.log.Debug("Shared list replaced by newer content", "share_id", shareID, "updated_at", content.UpdatedAt)
	return nil
}

// fetchForPoll reads the server, or the local snapshot when the server is
// unreachable. The local path only sees edits made on this device.
func (m *Machine) fetchForPoll(ctx context.Context, shareID string, since int64) (*models.SharedPayload, error) {
	shared, err := m.remote.GetShare(ctx, shareID, since)
	switch {
	case err == nil:
		return payloadFromShared(shared), nil
	case errors.Is(err, remote.ErrNotModified):
		return nil, nil
	case errors.Is(err, remote.ErrUnavailable):
		cached, cacheErr := m.local.LoadShared(shareID)
		if cacheErr != nil {
			return nil, cacheErr
		}
		return cached, nil
	default:
		return nil, err
	}
}

// StartSync starts the poll loop. It is a no-op when the loop already runs.
// The loop ends when ctx is done or StopSync is called.
func (m *Machine) StartSync(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.isShared {
		return ErrNotShared
	}
	if m.closed || m.pollStop != nil {
		return nil
	}

	pollCtx, cancel := context.WithCancel(ctx)
	ticker := m.clock.NewTicker(m.pollInterval)
	stop := make(chan struct{})
	done := make(chan struct{})
	m.pollStop = stop
	m.pollDone = done
	m.pollCancel = cancel

	go func() {
		defer close(done)
		defer cancel()
		defer ticker.Stop()
		defer m.forgetPollLoop(stop)
		for {
			select {
			case <-stop:
				return
			case <-pollCtx.Done():
				return
			case <-ticker.Chan():
				if err := m.Poll(pollCtx); err != nil && pollCtx.Err() == nil {
					m.log.Warn("Shared list poll failed", "error", err)
				}
			}
		}
	}()
	return nil
}

// forgetPollLoop clears the loop handles when the loop identified by stop
// ends on its own, so StartSync can start a new one.
func (m *Machine) forgetPollLoop(stop chan struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pollStop == stop {
		m.pollStop, m.pollDone, m.pollCancel = nil, nil, nil
	}
}

// StopSync stops the poll loop and cancels a pending debounced push. A poll
// request in flight is cancelled rather than waited for.
func (m *Machine) StopSync() {
	m.mu.Lock()
	stop, done, cancel := m.pollStop, m.pollDone, m.pollCancel
	m.pollStop, m.pollDone, m.pollCancel = nil, nil, nil
	m.cancelPushLocked()
	m.mu.Unlock()

	if stop != nil {
		cancel()
		close(stop)
		<-done
	}
}

func (m *Machine) Syncing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pollStop != nil
}

func payloadFromShared(s *models.SharedList) *models.SharedPayload {
	items := s.Items
	if items == nil {
		items = []models.ShoppingItem{}
	}
	return &models.SharedPayload{
		Items:     items,
		CreatedAt: s.Metadata.CreatedAt,
		UpdatedAt: s.Metadata.UpdatedAt,
	}
}
