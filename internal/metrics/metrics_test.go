package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestAlertCounters(t *testing.T) {
	before := testutil.ToFloat64(AlertItems.WithLabelValues("birthdays"))
	AlertItems.WithLabelValues("birthdays").Add(2)
	assert.Equal(t, before+2, testutil.ToFloat64(AlertItems.WithLabelValues("birthdays")))

	before = testutil.ToFloat64(AlertSectionErrors.WithLabelValues("glycemia"))
	AlertSectionErrors.WithLabelValues("glycemia").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(AlertSectionErrors.WithLabelValues("glycemia")))
}
