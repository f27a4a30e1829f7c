package web

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRendererParsesAllPages(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	for _, name := range []string{
		"dashboard.html", "buildings.html", "building_detail.html",
		"tenants.html", "leases.html", "payments.html",
		"meters.html", "reports.html", "settings.html", "room_detail.html",
	} {
		if _, ok := r.pages[name]; !ok {
			t.Errorf("page %s not parsed", name)
		}
	}

	for _, name := range []string{"floor_rooms.html", "room_card.html", "room_panel.html"} {
		if r.partials.Lookup(name) == nil {
			t.Errorf("partial %s not parsed", name)
		}
	}
}

func TestTitleCase(t *testing.T) {
	require.Equal(t, "Paid", titleCase("paid"))
	require.Equal(t, "Due Soon", titleCase("Due Soon"))
	require.Equal(t, "", titleCase(""))
}
