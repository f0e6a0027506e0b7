// Package kick hands XGKICK packets from vector unit 1 to a downstream
// consumer.
//
// A packet is the run of GIF tags and their data starting at a quadword of
// unit 1 data memory. Its length is found by walking the tags, and it
// wraps to the start of data memory when it runs past the end. The
// emulation thread copies each packet into a pre-sized buffer of a Queue;
// a Consumer goroutine receives them in order and returns the buffers.
package kick
