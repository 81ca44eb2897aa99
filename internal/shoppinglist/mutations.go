package shoppinglist

import (
	"context"

	"lista-zakupow/internal/ingredient"
	"lista-zakupow/internal/models"
)

// pending describes a remote write owed after a local mutation.
type pending struct {
	rev     uint64
	create  bool
	shared  bool
	listID  string
	items   []models.ShoppingItem
	changed bool
}

// AddIngredient appends one ingredient line of recipe. Lines that are not
// among the recipe's ingredients are ignored.
func (m *Machine) AddIngredient(ctx context.Context, recipe models.Recipe, line string) bool {
	if !recipe.HasIngredient(line) {
		return false
	}
	item := m.newItem(recipe, line)
	p := m.mutate(true, func(items []models.ShoppingItem) ([]models.ShoppingItem, bool) {
		return append(items, item), true
	})
	m.reconcile(ctx, p)
	return p.changed
}

// AddAllIngredients appends every ingredient of recipe as one batch.
func (m *Machine) AddAllIngredients(ctx context.Context, recipe models.Recipe) bool {
	if len(recipe.Ingredients) == 0 {
		return false
	}
	batch := make([]models.ShoppingItem, 0, len(recipe.Ingredients))
	for _, line := range recipe.Ingredients {
		batch = append(batch, m.newItem(recipe, line))
	}
	p := m.mutate(true, func(items []models.ShoppingItem) ([]models.ShoppingItem, bool) {
		return append(items, batch...), true
	})
	m.reconcile(ctx, p)
	return p.changed
}

// ToggleItem flips the checked flag of one item; unknown ids are ignored.
func (m *Machine) ToggleItem(ctx context.Context, itemID string) bool {
	p := m.mutate(false, func(items []models.ShoppingItem) ([]models.ShoppingItem, bool) {
		for i := range items {
			if items[i].ID == itemID {
				items[i].Checked = !items[i].Checked
				return items, true
			}
		}
		return items, false
	})
	m.reconcile(ctx, p)
	return p.changed
}

func (m *Machine) RemoveItem(ctx context.Context, itemID string) bool {
	p := m.mutate(false, func(items []models.ShoppingItem) ([]models.ShoppingItem, bool) {
		for i := range items {
			if items[i].ID == itemID {
				return append(items[:i], items[i+1:]...), true
			}
		}
		return items, false
	})
	m.reconcile(ctx, p)
	return p.changed
}

// ClearList drops all items but keeps the list id and createdAt.
func (m *Machine) ClearList(ctx context.Context) bool {
	p := m.mutate(false, func(items []models.ShoppingItem) ([]models.ShoppingItem, bool) {
		return []models.ShoppingItem{}, true
	})
	m.reconcile(ctx, p)
	return p.changed
}

func (m *Machine) newItem(recipe models.Recipe, line string) models.ShoppingItem {
	parsed := ingredient.Parse(line)
	return models.ShoppingItem{
		ID:             m.newItemID(),
		RecipeID:       recipe.ID,
		RecipeName:     recipe.Name,
		IngredientName: parsed.Name,
		Amount:         parsed.Amount,
		Checked:        false,
	}
}

// mutate applies change to a copy of the items under the lock, bumps
// updatedAt, writes through to local storage and reports the remote write
// still owed. Without a list, mutate creates one only when allowCreate is set.
func (m *Machine) mutate(allowCreate bool, change func([]models.ShoppingItem) ([]models.ShoppingItem, bool)) pending {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.nowMillis()
	created := false
	if m.list == nil {
		if !allowCreate {
			return pending{}
		}
		m.list = &models.ShoppingList{
			ID:        "local-" + m.newItemID(),
			Items:     []models.ShoppingItem{},
			CreatedAt: now,
			UpdatedAt: now,
		}
		created = true
	}

	items, changed := change(models.CloneItems(m.list.Items))
	if !changed {
		if created {
			m.list = nil
		}
		return pending{}
	}

	m.list.Items = items
	m.list.UpdatedAt = max(now, m.list.UpdatedAt)
	m.rev++
	m.persistLocked()

	p := pending{
		rev:     m.rev,
		create:  created,
		shared:  m.isShared,
		listID:  m.list.ID,
		items:   models.CloneItems(items),
		changed: true,
	}
	if p.shared {
		m.schedulePushLocked()
	} else {
		m.loading++
	}
	return p
}

// reconcile sends the owed write of an unshared list. Shared lists are
// pushed by the debouncer instead.
func (m *Machine) reconcile(ctx context.Context, p pending) {
	if !p.changed || p.shared {
		return
	}

	var result models.ShoppingList
	if p.create {
		result = m.remote.Create(ctx, p.items)
	} else {
		result = m.remote.Update(ctx, p.listID, p.items)
	}

	for {
		followUp := m.applyRemote(p, result)
		if followUp == nil {
			return
		}
		// Edits landed while the list was being created; send them under the new id.
		p = *followUp
		result = m.remote.Update(ctx, p.listID, p.items)
	}
}

// applyRemote folds a server response into the local list. Items are taken
// from the response only when no newer local edit exists.
func (m *Machine) applyRemote(p pending, result models.ShoppingList) *pending {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.list == nil || m.list.ID != p.listID {
		m.loading--
		return nil
	}

	// The server id is kept even when the list got shared meanwhile.
	if p.create && result.ID != "" {
		m.list.ID = result.ID
		if result.CreatedAt > 0 {
			m.list.CreatedAt = result.CreatedAt
		}
	}
	if m.isShared {
		m.loading--
		m.persistLocked()
		return nil
	}

	var followUp *pending
	if m.rev == p.rev {
		if result.Items != nil {
			m.list.Items = models.CloneItems(result.Items)
		}
		m.list.UpdatedAt = max(m.list.UpdatedAt, result.UpdatedAt)
		m.loading--
	} else if p.create {
		followUp = &pending{
			rev:     m.rev,
			listID:  m.list.ID,
			items:   models.CloneItems(m.list.Items),
			changed: true,
		}
	} else {
		m.loading--
	}

	m.persistLocked()
	return followUp
}
