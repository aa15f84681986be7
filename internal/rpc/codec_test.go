package rpc

import (
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
)

func TestGobCodecRegistered(t *testing.T) {
	codec := encoding.GetCodec(CodecName)
	require.NotNil(t, codec)
	req := &MAssignPartitionRequest{
		DatasetId: "ds",
		Kind:      "parquet",
		Loader:    []byte{1, 2, 3},
		Filters:   []MFilter{{Column: "ra", Min: 0, Max: 360}},
		DropNil:   true,
	}
	buf, err := codec.Marshal(req)
	require.Nil(t, err)
	out := new(MAssignPartitionRequest)
	require.Nil(t, codec.Unmarshal(buf, out))
	require.Equal(t, req, out)
}

func TestGobCodecZeroValueMessage(t *testing.T) {
	codec := encoding.GetCodec(CodecName)
	buf, err := codec.Marshal(&MStopRequest{})
	require.Nil(t, err)
	out := &MStopRequest{Graceful: true}
	require.Nil(t, codec.Unmarshal(buf, out))
}
