package util

// MaxChunkBytes is the maximum size of a single streamed message payload.
// 16-64kb is the ideal stream chunk size according to https://jbrandhorst.com/post/grpc-binary-blob-stream/
const MaxChunkBytes = 63 * 1024 // leave room for 1kb of other things

// ChunkBytes splits a buffer into slices of at most MaxChunkBytes
func ChunkBytes(buf []byte) [][]byte {
	chunks := make([][]byte, 0, len(buf)/MaxChunkBytes+1)
	for i := 0; i < len(buf); i += MaxChunkBytes {
		end := i + MaxChunkBytes
		if end > len(buf) {
			end = len(buf)
		}
		chunks = append(chunks, buf[i:end])
	}
	if len(chunks) == 0 {
		chunks = append(chunks, buf)
	}
	return chunks
}
