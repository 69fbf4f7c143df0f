package permission_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/reglet-dev/runguard/domain/entities"
	"github.com/reglet-dev/runguard/domain/permission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func request(class entities.ResourceClass, value string) entities.CapabilityRequest {
	return entities.NewCapabilityRequest(class, value)
}

func TestStore_AllCoversEveryValue(t *testing.T) {
	for _, class := range entities.ResourceClasses() {
		t.Run(class.String(), func(t *testing.T) {
			s := permission.NewStore(permission.WithWorkingDirectory("/work"))
			s.Grant(class, entities.All)

			for _, v := range []string{"", "HOME", "example.com:443", "/etc/shadow", "relative/file", "/usr/bin/curl"} {
				assert.True(t, s.IsAllowed(request(class, v)), "value %q", v)
			}
		})
	}
}

func TestStore_AllDoesNotLeakAcrossClasses(t *testing.T) {
	s := permission.NewStore()
	s.Grant(entities.ResourceRead, entities.All)

	assert.True(t, s.IsAllowed(request(entities.ResourceRead, "/etc/passwd")))
	assert.False(t, s.IsAllowed(request(entities.ResourceWrite, "/etc/passwd")))
	assert.False(t, s.IsAllowed(request(entities.ResourceEnv, "HOME")))
}

func TestStore_PrefixMatch(t *testing.T) {
	for _, class := range []entities.ResourceClass{entities.ResourceRead, entities.ResourceWrite} {
		t.Run(class.String(), func(t *testing.T) {
			s := permission.NewStore(permission.WithWorkingDirectory("/work"))
			s.Grant(class, entities.ValueOf("/tmp"))

			assert.True(t, s.IsAllowed(request(class, "/tmp")))
			assert.True(t, s.IsAllowed(request(class, "/tmp/file")))
			// String prefix, not path containment.
			assert.True(t, s.IsAllowed(request(class, "/tmpfile")))
			assert.False(t, s.IsAllowed(request(class, "/tm")))
			assert.False(t, s.IsAllowed(request(class, "/var/tmp/file")))
		})
	}
}

func TestStore_PrefixMatchPartialName(t *testing.T) {
	s := permission.NewStore()
	s.Grant(entities.ResourceRead, entities.ValueOf("/etc/pass"))

	assert.True(t, s.IsAllowed(request(entities.ResourceRead, "/etc/password")))
	assert.True(t, s.IsAllowed(request(entities.ResourceRead, "/etc/passwd")))
	assert.False(t, s.IsAllowed(request(entities.ResourceRead, "/etc/shadow")))
}

func TestStore_RelativePathsResolvedAtGrantTime(t *testing.T) {
	s := permission.NewStore(permission.WithWorkingDirectory("/home/op/project"))
	s.Grant(entities.ResourceWrite, entities.ValueOf("./out/../build"))

	assert.True(t, s.IsAllowed(request(entities.ResourceWrite, "/home/op/project/build/a.o")))
	assert.True(t, s.IsAllowed(request(entities.ResourceWrite, "build/b.o")))
	assert.False(t, s.IsAllowed(request(entities.ResourceWrite, "/home/op/project/out/a.o")))

	snap := s.Snapshot()
	assert.Equal(t, []string{"/home/op/project/build"}, snap.Write.Values)
}

func TestStore_RequestPathCleaned(t *testing.T) {
	s := permission.NewStore(permission.WithWorkingDirectory("/"))
	s.Grant(entities.ResourceRead, entities.ValueOf("/srv/data"))

	assert.False(t, s.IsAllowed(request(entities.ResourceRead, "/srv/data/../../etc/passwd")))
	assert.True(t, s.IsAllowed(request(entities.ResourceRead, "/srv/./data/x")))
}

func TestStore_NetHostOnly(t *testing.T) {
	s := permission.NewStore()
	s.Grant(entities.ResourceNet, entities.ValueOf("example.com"))

	assert.True(t, s.IsAllowed(request(entities.ResourceNet, "example.com:80")))
	assert.True(t, s.IsAllowed(request(entities.ResourceNet, "example.com:443")))
	assert.True(t, s.IsAllowed(request(entities.ResourceNet, "example.com")))
	assert.False(t, s.IsAllowed(request(entities.ResourceNet, "api.example.com:443")))
}

func TestStore_NetHostPort(t *testing.T) {
	s := permission.NewStore()
	s.Grant(entities.ResourceNet, entities.ValueOf("example.com:80"))

	assert.True(t, s.IsAllowed(request(entities.ResourceNet, "example.com:80")))
	assert.False(t, s.IsAllowed(request(entities.ResourceNet, "example.com:443")))
	assert.False(t, s.IsAllowed(request(entities.ResourceNet, "example.com")))
}

func TestStore_NetIPv6(t *testing.T) {
	s := permission.NewStore()
	s.Grant(entities.ResourceNet, entities.ValueOf("[::1]"))
	s.Grant(entities.ResourceNet, entities.ValueOf("[fe80::1]:8080"))

	assert.True(t, s.IsAllowed(request(entities.ResourceNet, "[::1]:53")))
	assert.True(t, s.IsAllowed(request(entities.ResourceNet, "[fe80::1]:8080")))
	assert.False(t, s.IsAllowed(request(entities.ResourceNet, "[fe80::1]:8081")))

	snap := s.Snapshot()
	assert.Equal(t, []string{"::1", "[fe80::1]:8080"}, snap.Net.Values)
}

func TestStore_NetUnparsableStoredVerbatim(t *testing.T) {
	s := permission.NewStore()
	s.Grant(entities.ResourceNet, entities.ValueOf("host:http"))

	assert.True(t, s.IsAllowed(request(entities.ResourceNet, "host:http")))
	assert.False(t, s.IsAllowed(request(entities.ResourceNet, "host:80")))
}

func TestStore_ExactMatch(t *testing.T) {
	tests := []struct {
		class   entities.ResourceClass
		granted string
		allowed []string
		denied  []string
	}{
		{
			class:   entities.ResourceRun,
			granted: "/bin/ls",
			allowed: []string{"/bin/ls"},
			denied:  []string{"/bin/lsx", "/bin/l", "ls"},
		},
		{
			class:   entities.ResourceEnv,
			granted: "HOME",
			allowed: []string{"HOME"},
			denied:  []string{"HOMEPATH", "home", "HOM"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.class.String(), func(t *testing.T) {
			s := permission.NewStore()
			s.Grant(tt.class, entities.ValueOf(tt.granted))

			for _, v := range tt.allowed {
				assert.True(t, s.IsAllowed(request(tt.class, v)), "expected %q allowed", v)
			}
			for _, v := range tt.denied {
				assert.False(t, s.IsAllowed(request(tt.class, v)), "expected %q denied", v)
			}
		})
	}
}

func TestStore_AllIsNotAStarToken(t *testing.T) {
	s := permission.NewStore()
	s.Grant(entities.ResourceEnv, entities.ValueOf("*"))

	assert.True(t, s.IsAllowed(request(entities.ResourceEnv, "*")))
	assert.False(t, s.IsAllowed(request(entities.ResourceEnv, "HOME")))
}

func TestStore_GrantIdempotent(t *testing.T) {
	s := permission.NewStore(permission.WithWorkingDirectory("/work"))

	s.Grant(entities.ResourceRead, entities.ValueOf("/tmp"))
	s.Grant(entities.ResourceNet, entities.ValueOf("example.com:80"))
	before := s.Len()
	allowedBefore := s.IsAllowed(request(entities.ResourceRead, "/tmp/x"))

	s.Grant(entities.ResourceRead, entities.ValueOf("/tmp"))
	s.Grant(entities.ResourceRead, entities.ValueOf("/tmp/"))
	s.Grant(entities.ResourceNet, entities.ValueOf("example.com:80"))

	assert.Equal(t, before, s.Len())
	assert.Equal(t, allowedBefore, s.IsAllowed(request(entities.ResourceRead, "/tmp/x")))
	assert.False(t, s.IsAllowed(request(entities.ResourceNet, "example.com:443")))
}

func TestStore_Apply(t *testing.T) {
	s := permission.NewStore(permission.WithWorkingDirectory("/work"))
	s.Apply(&entities.GrantConfig{
		Env:  entities.Selection{Values: []string{"HOME", "PATH"}},
		Net:  entities.Selection{All: true},
		Read: entities.Selection{Values: []string{"data"}},
	})

	assert.True(t, s.IsAllowed(request(entities.ResourceEnv, "PATH")))
	assert.True(t, s.IsAllowed(request(entities.ResourceNet, "anything:1")))
	assert.True(t, s.IsAllowed(request(entities.ResourceRead, "/work/data/x")))
	assert.False(t, s.IsAllowed(request(entities.ResourceWrite, "/work/data/x")))
	assert.False(t, s.IsAllowed(request(entities.ResourceRun, "/bin/sh")))
}

func TestStore_ApplyAllowAll(t *testing.T) {
	s := permission.NewStore()
	s.Apply(&entities.GrantConfig{AllowAll: true})

	assert.Equal(t, len(entities.ResourceClasses()), s.Len())
	for _, class := range entities.ResourceClasses() {
		assert.True(t, s.IsAllowed(request(class, "x")))
	}
}

func TestStore_Snapshot(t *testing.T) {
	s := permission.NewStore(permission.WithWorkingDirectory("/"))
	s.Grant(entities.ResourceEnv, entities.ValueOf("PATH"))
	s.Grant(entities.ResourceEnv, entities.ValueOf("HOME"))
	s.Grant(entities.ResourceRun, entities.All)
	s.Grant(entities.ResourceRun, entities.ValueOf("/bin/ls"))

	snap := s.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, []string{"HOME", "PATH"}, snap.Env.Values)
	assert.True(t, snap.Run.All)
	assert.Empty(t, snap.Run.Values)
	assert.True(t, snap.Read.IsEmpty())

	restored := permission.NewStore(permission.WithWorkingDirectory("/"))
	restored.Apply(snap)
	assert.True(t, restored.IsAllowed(request(entities.ResourceEnv, "HOME")))
	assert.True(t, restored.IsAllowed(request(entities.ResourceRun, "/usr/bin/env")))
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := permission.NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("VAR_%d", i%4)
			s.Grant(entities.ResourceEnv, entities.ValueOf(name))
			assert.True(t, s.IsAllowed(request(entities.ResourceEnv, name)))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 4, s.Len())
}

func TestStore_UnknownClassDenied(t *testing.T) {
	s := permission.NewStore()
	s.Grant(entities.ResourceEnv, entities.ValueOf("HOME"))

	assert.False(t, s.IsAllowed(request(entities.ResourceClass(42), "HOME")))
}
