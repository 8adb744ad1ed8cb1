// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

//go:build libdqlite

// Package dqlite opens databases on a dqlite application node. dqlite
// reports NULL columns of nullable columns faithfully, so the databases it
// returns resolve result fields of such columns to the strict null policy.
package dqlite

import (
	"context"
	"fmt"

	"github.com/canonical/go-dqlite/app"

	"github.com/canonical/sqlval"
)

// Backend is the capability of databases opened on a dqlite node.
var Backend = sqlval.NewBackend("dqlite", sqlval.WithStrictNulls())

// NodeOptions configures the dqlite node started by Open.
type NodeOptions struct {
	// Address is the address the node listens on. If empty the node only
	// serves local clients.
	Address string
	// Cluster lists the addresses of existing nodes to join.
	Cluster []string
}

func (o *NodeOptions) appOptions() []app.Option {
	if o == nil {
		return nil
	}
	var opts []app.Option
	if o.Address != "" {
		opts = append(opts, app.WithAddress(o.Address))
	}
	if len(o.Cluster) > 0 {
		opts = append(opts, app.WithCluster(o.Cluster))
	}
	return opts
}

// Node is a running dqlite application node.
type Node struct {
	app *app.App
}

// Start starts a node storing its data in dir and waits until it is ready
// to serve queries.
func Start(ctx context.Context, dir string, opts *NodeOptions) (*Node, error) {
	a, err := app.New(dir, opts.appOptions()...)
	if err != nil {
		return nil, fmt.Errorf("cannot start dqlite node: %w", err)
	}
	if err := a.Ready(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("cannot start dqlite node: %w", err)
	}
	return &Node{app: a}, nil
}

// Open opens the named database on the node.
func (n *Node) Open(ctx context.Context, name string) (*sqlval.DB, error) {
	sqldb, err := n.app.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("cannot open dqlite database %q: %w", name, err)
	}
	return sqlval.NewDB(sqldb, Backend), nil
}

// Close hands over the node's responsibilities and stops it.
func (n *Node) Close(ctx context.Context) error {
	if err := n.app.Handover(ctx); err != nil {
		n.app.Close()
		return err
	}
	return n.app.Close()
}
