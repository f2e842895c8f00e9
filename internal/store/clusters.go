package store

import (
	"context"
	"time"

	"github.com/tkarpov/claimscope/internal/errors"
	"github.com/tkarpov/claimscope/internal/model"
)

// ActiveClusters returns all active clusters in ascending (created_at, id)
// order. The ordering is part of the clustering contract: tie-breaks between
// near-equal similarity scores go to the earliest-founded cluster, and that
// choice must be stable across runs.
func ActiveClusters(ctx context.Context, q Querier) ([]model.EventCluster, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, canonical_title, status, created_at FROM event_clusters
		 WHERE status = ? ORDER BY created_at, id`, string(model.ClusterStatusActive))
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var clusters []model.EventCluster
	for rows.Next() {
		var c model.EventCluster
		var status string
		if err := rows.Scan(&c.ID, &c.CanonicalTitle, &status, &c.CreatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		c.Status = model.ClusterStatus(status)
		clusters = append(clusters, c)
	}
	return clusters, rows.Err()
}

// ActiveClustersByID returns the subset of active clusters matching the given
// ids, preserving the stable (created_at, id) order.
func ActiveClustersByID(ctx context.Context, q Querier, ids []string) ([]model.EventCluster, error) {
	all, err := ActiveClusters(ctx, q)
	if err != nil {
		return nil, err
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var filtered []model.EventCluster
	for _, c := range all {
		if _, ok := want[c.ID]; ok {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

// InsertCluster founds a new active event cluster with the given canonical
// title. The title is derived once and never recomputed.
func InsertCluster(ctx context.Context, q Querier, canonicalTitle string) (*model.EventCluster, error) {
	id, err := NewID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	cluster := &model.EventCluster{
		ID:             id,
		CanonicalTitle: canonicalTitle,
		Status:         model.ClusterStatusActive,
		CreatedAt:      time.Now().Unix(),
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO event_clusters (id, canonical_title, status, created_at) VALUES (?, ?, ?, ?)`,
		cluster.ID, cluster.CanonicalTitle, string(cluster.Status), cluster.CreatedAt,
	)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return cluster, nil
}
