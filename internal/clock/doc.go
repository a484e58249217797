// Package clock provides the vector clock used to track causality between
// the processes of a board. A VectorClock owns one counter per known process
// and only ever raises them; Timestamps are the detached counter mappings
// stamped onto posts and compared with a four-way partial order.
package clock
