package evaluation

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BaSui01/verifyflow/testutil"
	"github.com/BaSui01/verifyflow/testutil/fixtures"
	"github.com/BaSui01/verifyflow/testutil/mocks"
	"github.com/BaSui01/verifyflow/types"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ====== CSV ======

func TestCSVSink_HeaderAndRows(t *testing.T) {
	var buf bytes.Buffer
	sink, err := NewCSVSink(&buf)
	require.NoError(t, err)

	// 表头立即写出
	assert.Equal(t, strings.Join(types.RecordHeader(), ",")+"\n", buf.String())

	ctx := testutil.TestContext(t)
	require.NoError(t, sink.Write(ctx, fixtures.SampleRecord(1, "Verifier_System")))
	failed := types.NewEvaluationRecord(
		types.BenchmarkTask{ID: 2, Goal: "Who is the king of the United States?"},
		"No_Verifier_Baseline",
		types.FailedPlan(),
		"Error: Executor received a failed task from the planner.",
		types.Verdict{Verified: false, Reasoning: "No Verifier present. Assumed success."},
	)
	require.NoError(t, sink.Write(ctx, failed))
	require.NoError(t, sink.Close())

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, types.RecordHeader(), rows[0])
	assert.Equal(t, fixtures.SampleRecord(1, "Verifier_System").Row(), rows[1])
	assert.Equal(t, []string{
		"2",
		"Who is the king of the United States?",
		"No_Verifier_Baseline",
		"PLANNER_AGENT_FAILED",
		"[]",
		"Error: Executor received a failed task from the planner.",
		"false",
		"No Verifier present. Assumed success.",
	}, rows[2])
}

func TestCSVSink_QuotesEmbeddedDelimiters(t *testing.T) {
	var buf bytes.Buffer
	sink, err := NewCSVSink(&buf)
	require.NoError(t, err)

	rec := fixtures.SampleRecord(7, "Self_Verifier_Baseline")
	rec.ExecutorOutput = "line one,\n\"quoted\" line two"
	require.NoError(t, sink.Write(testutil.TestContext(t), rec))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, rec.ExecutorOutput, rows[1][5])
}

func TestCreateCSVSink_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	sink, err := CreateCSVSink(path)
	require.NoError(t, err)

	require.NoError(t, sink.Write(testutil.TestContext(t), fixtures.SampleRecord(1, "Verifier_System")))

	// 每行写入后即可见
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))

	require.NoError(t, sink.Close())
	assert.NoError(t, sink.Close(), "second close is a no-op")
}

func TestCreateCSVSink_BadPath(t *testing.T) {
	_, err := CreateCSVSink(filepath.Join(t.TempDir(), "missing", "results.csv"))
	assert.Error(t, err)
}

func TestCSVSink_WithHarness(t *testing.T) {
	var buf bytes.Buffer
	sink, err := NewCSVSink(&buf)
	require.NoError(t, err)

	f := newHarnessFixture(capitalProvider(), mocks.NewMockSearchProvider().WithSnippet(snippet))
	_, err = f.harness.Run(testutil.TestContext(t), DefaultBenchmark()[:2], f.strategies(t), sink)
	require.NoError(t, err)
	require.NoError(t, sink.Close())

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 7)
	assert.Equal(t, []string{"1", "1", "1", "2", "2", "2"}, []string{rows[1][0], rows[2][0], rows[3][0], rows[4][0], rows[5][0], rows[6][0]})
}

// ====== Database ======

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func TestDBSink_WriteAndQuery(t *testing.T) {
	db := openTestDB(t)
	sink, err := NewDBSink(db, "batch-a", nil)
	require.NoError(t, err)
	defer sink.Close()

	ctx := testutil.TestContext(t)
	want := []types.EvaluationRecord{
		fixtures.SampleRecord(1, "Verifier_System"),
		fixtures.SampleRecord(1, "No_Verifier_Baseline"),
		fixtures.SampleRecord(2, "Verifier_System"),
	}
	for _, rec := range want {
		require.NoError(t, sink.Write(ctx, rec))
	}

	got, err := sink.Records(ctx, "batch-a")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	other, err := sink.Records(ctx, "batch-b")
	require.NoError(t, err)
	assert.Empty(t, other)

	assert.True(t, db.Migrator().HasTable("evaluation_records"))
	assert.True(t, db.Migrator().HasColumn(&RecordModel{}, "system_reported_success"))
}

func TestDBSink_WithHarness(t *testing.T) {
	db := openTestDB(t)
	f := newHarnessFixture(capitalProvider(), mocks.NewMockSearchProvider().WithSnippet(snippet))
	sink, err := NewDBSink(db, f.harness.BatchID(), nil)
	require.NoError(t, err)
	defer sink.Close()

	ctx := testutil.TestContext(t)
	_, err = f.harness.Run(ctx, DefaultBenchmark()[:2], f.strategies(t), sink)
	require.NoError(t, err)

	got, err := sink.Records(ctx, f.harness.BatchID())
	require.NoError(t, err)
	require.Len(t, got, 6)
	assert.Equal(t, "Verifier_System", got[0].Strategy)
	assert.Equal(t, 2, got[5].TaskID)
	assert.Equal(t, "Self_Verifier_Baseline", got[5].Strategy)
}

func TestDBSink_WriteAfterClose(t *testing.T) {
	sink, err := NewDBSink(openTestDB(t), "batch-a", nil)
	require.NoError(t, err)
	require.NoError(t, sink.Close())

	err = sink.Write(testutil.TestContext(t), fixtures.SampleRecord(1, "Verifier_System"))
	assert.Error(t, err)
}

func TestNewDBSink_NilDB(t *testing.T) {
	_, err := NewDBSink(nil, "batch", nil)
	assert.Error(t, err)
}
