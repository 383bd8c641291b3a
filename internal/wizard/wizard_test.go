package wizard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunEvaluationWizard_EmptyCatalog(t *testing.T) {
	_, err := RunEvaluationWizard(strings.NewReader(""), &strings.Builder{}, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "catalog is empty")
}

func TestValidateDiversity(t *testing.T) {
	require.NoError(t, validateDiversity(""))
	require.NoError(t, validateDiversity("  "))
	require.NoError(t, validateDiversity("0"))
	require.NoError(t, validateDiversity("0.5"))
	require.NoError(t, validateDiversity("1"))
	require.Error(t, validateDiversity("1.5"))
	require.Error(t, validateDiversity("-0.1"))
	require.Error(t, validateDiversity("high"))
}
