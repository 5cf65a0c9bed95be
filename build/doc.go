/*

Process of construction

Declare blocks (DeclPlainBlock, DeclLoopHead) ->
	DefBlock / DefLoop, in declaration order ->
Current block (emit instructions, phis) ->
	end instruction (Jump, Branch, Ret) ->
Finished block ->
	... next block, nested DefSubgraph scopes ...
All blocks finished ->
	Build returns ->
Immutable graph (ir.Graph)

Blocks are defined in exactly the order they were declared within each
scope, so definition order is reverse postorder by construction: every
edge points forward, except bounded back edges into a loop head that is
still open. The backend consumes the graph as is, with no reordering.

*/
package build
