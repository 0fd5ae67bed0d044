package console

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kartik-turing/repo-scanner-frontend/internal/infra/apiclient"
)

func newTestDrawer(t *testing.T, fb *fakeBackend, ref Refresher) *Drawer {
	t.Helper()
	d := NewDrawer(testSchema(), fb, ref, nil, nil, WithClock(testClock))
	require.NoError(t, d.Mount(context.Background()))
	return d
}

func fillValid(d *Drawer) {
	d.SetValues(Values{"name": "Hooli", "employees": "12", "partnerId": "p1"})
}

func TestDrawerMountLoadsOptionsOnce(t *testing.T) {
	fb := newFakeBackend()
	d := newTestDrawer(t, fb, &spyRefresher{})

	assert.Equal(t, []Option{{Value: "p1", Label: "Northwind"}, {Value: "p2", Label: "p2"}}, d.Options("partnerId"))
	assert.Equal(t, BoolOptions, d.Options("active"))
	assert.Nil(t, d.Options("unknown"))

	require.NoError(t, d.Mount(context.Background()))
	assert.Equal(t, 1, fb.count("list", "partners"))
}

func TestDrawerMountFailureLeavesSelectorEmpty(t *testing.T) {
	fb := newFakeBackend()
	fb.listErr["partners"] = errBackendDown
	d := NewDrawer(testSchema(), fb, &spyRefresher{}, nil, nil)

	err := d.Mount(context.Background())
	assert.ErrorIs(t, err, errBackendDown)
	assert.Empty(t, d.Options("partnerId"))
}

func TestDrawerCreate(t *testing.T) {
	fb := newFakeBackend()
	ref := &spyRefresher{}
	d := newTestDrawer(t, fb, ref)

	d.Open(nil)
	require.True(t, d.IsOpen())
	assert.Equal(t, ModeCreate, d.Mode())
	fillValid(d)

	res, err := d.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, fb.count("create", "vendors"))
	assert.Equal(t, []bool{true}, ref.calls())
	assert.True(t, res.Refreshed)
	assert.Equal(t, "ok", res.Message)

	c, _ := fb.last("create")
	assert.Equal(t, "p1", c.Payload["partnerId"])
	assert.Equal(t, float64(12), c.Payload["employees"])
	assert.Equal(t, "2024-05-01T10:30:00.000Z", c.Payload["createdAt"])

	assert.False(t, d.IsOpen())
	assert.Equal(t, "", d.Values()["name"])
}

func TestDrawerMissingRequiredFieldMakesNoCalls(t *testing.T) {
	fb := newFakeBackend()
	ref := &spyRefresher{}
	d := newTestDrawer(t, fb, ref)

	d.OpenCreate()
	d.SetValues(Values{"employees": "1", "partnerId": "p1"})
	_, err := d.Submit(context.Background())

	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 0, fb.count("create", "vendors"))
	assert.Empty(t, ref.calls())
	assert.True(t, d.IsOpen())
	assert.Equal(t, "This field is required.", d.Errors()["name"])

	d.Set("name", "Hooli")
	assert.NotContains(t, d.Errors(), "name")
}

func TestDrawerEdit(t *testing.T) {
	fb := newFakeBackend()
	ref := &spyRefresher{}
	d := newTestDrawer(t, fb, ref)

	item := Records(vendorRows())[0]
	d.Open(item)
	require.Equal(t, ModeEdit, d.Mode())

	values := d.Values()
	assert.Equal(t, "Acme", values["name"])
	assert.Equal(t, "Paris", values["city"])
	assert.Equal(t, "120", values["employees"])
	assert.Equal(t, "true", values["active"])
	for _, f := range d.VisibleFields() {
		assert.NotEqual(t, "partnerId", f.Key)
	}

	d.Set("city", "Lyon")
	_, err := d.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, fb.count("update", "vendors"))
	c, _ := fb.last("update")
	assert.Equal(t, "v1", c.ID)
	assert.Equal(t, "Lyon", c.Payload["city"])
	assert.NotContains(t, c.Payload, "partnerId")
	assert.Equal(t, "2024-01-02T09:15:00.000Z", c.Payload["createdAt"])
	assert.Equal(t, []bool{true}, ref.calls())
}

func TestDrawerSubmitOutcomes(t *testing.T) {
	tests := []struct {
		name          string
		message       string
		writeErr      error
		wantErr       error
		wantRefreshes int
	}{
		{name: "message refreshes", message: "created", wantRefreshes: 1},
		{name: "no message skips refresh", message: ""},
		{name: "backend error skips refresh", writeErr: &apiclient.StatusError{StatusCode: 500}, wantErr: apiclient.ErrStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := newFakeBackend()
			fb.message = tt.message
			fb.writeErr = tt.writeErr
			ref := &spyRefresher{}
			d := newTestDrawer(t, fb, ref)

			d.OpenCreate()
			fillValid(d)
			res, err := d.Submit(context.Background())

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Len(t, ref.calls(), tt.wantRefreshes)
			assert.Equal(t, tt.wantRefreshes == 1, res.Refreshed)
			assert.False(t, d.IsOpen(), "drawer closes whatever the outcome")
			assert.False(t, d.Busy())
		})
	}
}

func TestDrawerSubmitClosed(t *testing.T) {
	d := newTestDrawer(t, newFakeBackend(), &spyRefresher{})
	_, err := d.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotOpen)
}

func TestDrawerCloseResets(t *testing.T) {
	d := newTestDrawer(t, newFakeBackend(), &spyRefresher{})
	d.OpenEdit(Records(vendorRows())[1])
	d.Close()

	assert.False(t, d.IsOpen())
	assert.Equal(t, ModeCreate, d.Mode())
	assert.Nil(t, d.Item())
	assert.Equal(t, Defaults(testSchema(), testNow), d.Values())
}
