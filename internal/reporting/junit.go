package reporting

import (
	"encoding/xml"
	"fmt"
	"os"
	"time"

	"github.com/spboyer/loadout/internal/orchestration"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one verification run.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Skipped    int             `xml:"skipped,attr"`
	Time       float64         `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one algorithm check.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
	SystemOut string        `xml:"system-out,omitempty"`
}

// JUnitFailure represents a test assertion failure.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitError represents an unexpected error during test execution.
type JUnitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitSkipped marks a test as skipped.
type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ConvertToJUnit converts a verified results document to JUnit XML. Each
// algorithm check becomes one test case; suboptimal greedy answers pass
// with a note in system-out.
func ConvertToJUnit(r *Results) *JUnitTestSuites {
	v := r.Verification
	if v == nil {
		v = &orchestration.Verification{}
	}

	suite := JUnitTestSuite{
		Name:      "loadout verify",
		Timestamp: r.CreatedAt.Format(time.RFC3339),
		Properties: []JUnitProperty{
			{Name: "run_id", Value: r.RunID},
			{Name: "source", Value: r.Source},
			{Name: "capacity", Value: formatNumber(r.Container.Capacity)},
			{Name: "pallet_limit", Value: formatLimit(r.Container)},
			{Name: "optimum", Value: formatNumber(v.Optimum)},
			{Name: "tolerance", Value: fmt.Sprintf("%g", v.Tolerance)},
		},
	}

	for _, c := range v.Checks {
		tc := JUnitTestCase{
			Name:      c.Algorithm.DisplayName(),
			Classname: "loadout." + string(c.Algorithm),
			Time:      float64(c.Elapsed) / 1e6,
		}
		switch c.Status {
		case orchestration.CheckFailed:
			tc.Failure = &JUnitFailure{
				Message: fmt.Sprintf("%s: profit=%s", c.Algorithm.DisplayName(), formatNumber(c.Profit)),
				Type:    "OptimumMismatch",
				Body:    c.Message,
			}
			suite.Failures++
		case orchestration.CheckError:
			tc.Error = &JUnitError{Message: c.Message, Type: "SolverError"}
			suite.Errors++
		case orchestration.CheckSkipped:
			tc.Skipped = &JUnitSkipped{Message: c.Message}
			suite.Skipped++
		case orchestration.CheckSuboptimal:
			tc.SystemOut = c.Message
		}
		suite.Time += tc.Time
		suite.TestCases = append(suite.TestCases, tc)
	}
	suite.Tests = len(suite.TestCases)

	return &JUnitTestSuites{
		Tests:      suite.Tests,
		Failures:   suite.Failures,
		Errors:     suite.Errors,
		Time:       suite.Time,
		TestSuites: []JUnitTestSuite{suite},
	}
}

// WriteJUnitXML writes JUnit XML to the specified file path.
func WriteJUnitXML(r *Results, path string) error {
	suites := ConvertToJUnit(r)

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	output := append([]byte(xml.Header), data...)
	return os.WriteFile(path, output, 0644)
}
