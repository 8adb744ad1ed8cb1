// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

/*
Package expr builds typed expression trees. Every operator is a construction
function checking its operands against the rules of the left hand domain
before the node is created. A rejected operand never produces a node and the
error matches ErrInvalidOperandType.

The package does not interact with databases. Render turns a finished tree
into a SQL fragment and the arguments for its constants, for use by a
statement layer.
*/
package expr
