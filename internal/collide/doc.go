// Package collide implements the narrow phase: the analytic time of impact
// between two swept spheres, and a kernel that finds each seeker's earliest
// impact against the broad-phase candidates returned by a tree query.
package collide
