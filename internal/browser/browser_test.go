package browser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveLink(t *testing.T) {
	tests := []struct {
		name   string
		webURL string
		link   string
		want   string
	}{
		{name: "relative", webURL: "http://localhost:3000", link: "/questions/5/", want: "http://localhost:3000/questions/5/"},
		{name: "base with path", webURL: "https://qa.example.com/app/", link: "/questions/5/", want: "https://qa.example.com/app/questions/5/"},
		{name: "absolute", webURL: "http://localhost:3000", link: "https://other.example.com/x", want: "https://other.example.com/x"},
		{name: "fragment", webURL: "http://localhost:3000", link: "/questions/5/#answer-2", want: "http://localhost:3000/questions/5/#answer-2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveLink(tt.webURL, tt.link)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestResolveLinkErrors(t *testing.T) {
	_, err := ResolveLink("http://localhost:3000", " ")
	require.Error(t, err)
	_, err = ResolveLink("not a url", "/questions/1/")
	require.Error(t, err)
}

func TestOpenURLUsesOpener(t *testing.T) {
	var opened string
	prev := opener
	opener = func(target string) error { opened = target; return nil }
	t.Cleanup(func() { opener = prev })

	require.NoError(t, OpenURL("http://localhost:3000/questions/1/"))
	require.Equal(t, "http://localhost:3000/questions/1/", opened)
}
