package provision

import (
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWorkerEnvVars(t *testing.T) {
	env := WorkerEnv{
		CoordinatorHost: "10.0.0.4",
		CoordinatorPort: 1643,
		Extra:           map[string]string{"AWS_REGION": "us-east-1", NodeTypeVar: "coordinator"},
	}
	vars := env.Vars()
	require.Equal(t, []EnvVar{
		{Name: "AWS_REGION", Value: "us-east-1"},
		{Name: CoordinatorHostVar, Value: "10.0.0.4"},
		{Name: CoordinatorPortVar, Value: "1643"},
		{Name: NodeTypeVar, Value: "worker"},
	}, vars)
}

func TestAdvertiseHost(t *testing.T) {
	noLookup := func() ([]net.IP, error) { return nil, fmt.Errorf("no resolver") }

	host, err := advertiseHost("coordinator.skyshade.svc", "", noLookup)
	require.Nil(t, err)
	require.Equal(t, "coordinator.skyshade.svc", host)

	host, err = advertiseHost("127.0.0.1", "10.4.0.7", noLookup)
	require.Nil(t, err)
	require.Equal(t, "10.4.0.7", host)

	host, err = advertiseHost("localhost", "", func() ([]net.IP, error) {
		return []net.IP{net.ParseIP("127.0.1.1"), net.ParseIP("fe80::1"), net.ParseIP("192.168.3.9")}, nil
	})
	require.Nil(t, err)
	require.Equal(t, "192.168.3.9", host)

	_, err = advertiseHost("127.0.0.1", "", noLookup)
	require.NotNil(t, err)
	_, err = advertiseHost("", "0.0.0.0", func() ([]net.IP, error) { return []net.IP{net.ParseIP("127.0.0.1")}, nil })
	require.NotNil(t, err)
}
