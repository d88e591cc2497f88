// Package hierarchy строит даунлайн дистрибьюторов по снимку реферальной сети.
package hierarchy

import (
	"fmt"
	"sort"

	"mlm-network/pkg/models"
)

// Resolver хранит дистрибьюторов по id и список смежности "реферер -> рефералы".
// Resolver неизменяем после создания и безопасен для конкурентного чтения.
type Resolver struct {
	nodes    map[int64]models.Distributor
	children map[int64][]int64
	ids      []int64
}

// NewResolver строит резолвер по снимку дистрибьюторов.
// Рефералы каждого узла упорядочены по id, то есть в порядке создания.
func NewResolver(distributors []*models.Distributor) *Resolver {
	r := &Resolver{
		nodes:    make(map[int64]models.Distributor, len(distributors)),
		children: make(map[int64][]int64),
		ids:      make([]int64, 0, len(distributors)),
	}

	for _, d := range distributors {
		r.nodes[d.ID] = *d
		r.ids = append(r.ids, d.ID)
		if d.ReferrerID != nil {
			r.children[*d.ReferrerID] = append(r.children[*d.ReferrerID], d.ID)
		}
	}

	sort.Slice(r.ids, func(i, j int) bool { return r.ids[i] < r.ids[j] })
	for _, kids := range r.children {
		sort.Slice(kids, func(i, j int) bool { return kids[i] < kids[j] })
	}

	return r
}

// IDs возвращает id всех дистрибьюторов по возрастанию
func (r *Resolver) IDs() []int64 {
	return append([]int64(nil), r.ids...)
}

// Get возвращает дистрибьютора по id
func (r *Resolver) Get(id int64) (models.Distributor, bool) {
	d, ok := r.nodes[id]
	return d, ok
}

// DirectIDs возвращает id прямых рефералов
func (r *Resolver) DirectIDs(id int64) []int64 {
	return append([]int64(nil), r.children[id]...)
}

// DownlineIDs возвращает id всех потомков id в порядке обхода в глубину.
// Повторное посещение узла означает цикл и приводит к ErrCycleDetected.
func (r *Resolver) DownlineIDs(id int64) ([]int64, error) {
	visited := map[int64]bool{id: true}
	result := make([]int64, 0)

	var walk func(parent int64) error
	walk = func(parent int64) error {
		for _, child := range r.children[parent] {
			if visited[child] {
				return fmt.Errorf("%w: дистрибьютор %d", models.ErrCycleDetected, child)
			}
			visited[child] = true
			result = append(result, child)
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(id); err != nil {
		return nil, err
	}
	return result, nil
}

// DownlineCount возвращает размер даунлайна в заданной области
func (r *Resolver) DownlineCount(id int64, scope models.DownlineScope) (int, error) {
	if scope == models.DownlineScopeDirect {
		return len(r.children[id]), nil
	}

	ids, err := r.DownlineIDs(id)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// Tree строит дерево даунлайна с корнем id.
// Для несуществующего дистрибьютора возвращает nil без ошибки.
func (r *Resolver) Tree(id int64) (*models.DownlineHierarchy, error) {
	if _, ok := r.nodes[id]; !ok {
		return nil, nil
	}
	return r.build(id, map[int64]bool{})
}

func (r *Resolver) build(id int64, onPath map[int64]bool) (*models.DownlineHierarchy, error) {
	if onPath[id] {
		return nil, fmt.Errorf("%w: дистрибьютор %d", models.ErrCycleDetected, id)
	}
	onPath[id] = true
	defer delete(onPath, id)

	node := &models.DownlineHierarchy{
		Distributor: r.nodes[id],
		Children:    make([]*models.DownlineHierarchy, 0, len(r.children[id])),
	}
	for _, child := range r.children[id] {
		sub, err := r.build(child, onPath)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, sub)
	}
	return node, nil
}

// Subtotals сворачивает значения по даунлайну: для каждого дистрибьютора
// возвращает сумму value по всем его потомкам (без него самого).
// Каждый узел обрабатывается один раз, цикл приводит к ErrCycleDetected.
func Subtotals[T any](r *Resolver, value func(id int64) T, add func(a, b T) T, zero T) (map[int64]T, error) {
	const (
		unvisited = iota
		inProgress
		done
	)

	state := make(map[int64]int, len(r.ids))
	totals := make(map[int64]T, len(r.ids))

	var visit func(id int64) error
	visit = func(id int64) error {
		switch state[id] {
		case done:
			return nil
		case inProgress:
			return fmt.Errorf("%w: дистрибьютор %d", models.ErrCycleDetected, id)
		}
		state[id] = inProgress

		sum := zero
		for _, child := range r.children[id] {
			if err := visit(child); err != nil {
				return err
			}
			sum = add(sum, add(value(child), totals[child]))
		}

		totals[id] = sum
		state[id] = done
		return nil
	}

	for _, id := range r.ids {
		if err := visit(id); err != nil {
			return nil, err
		}
	}
	return totals, nil
}
