// Copyright 2025 The Folio Authors
// SPDX-License-Identifier: Apache-2.0

package curation

// ClusterRadius is the distance, in meters, under which pending photos are
// offered as a single group.
const ClusterRadius = 150.0

// clusterPending groups pending photos into clusters based on a distance
// threshold. A photo joins a cluster when it is close to any of its members.
func clusterPending(items []*QueueItem, distanceThreshold float64) [][]*QueueItem {
	clusters := make([][]*QueueItem, 0, len(items))

	visited := make([]bool, len(items))

	for i, first := range items {
		if visited[i] {
			continue
		}

		cluster := []*QueueItem{first}
		visited[i] = true

		// grow until no unvisited item is within reach of a member
		for k := 0; k < len(cluster); k++ {
			member := cluster[k]

			for j, candidate := range items {
				if visited[j] {
					continue
				}

				if candidate.Point.HaversineDistance(&member.Point) <= distanceThreshold {
					cluster = append(cluster, candidate)
					visited[j] = true
				}
			}
		}

		clusters = append(clusters, cluster)
	}

	return clusters
}
