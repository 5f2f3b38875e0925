// Package datasettest provides CSV fixtures for tests that need a loadable dataset.
package datasettest

import (
	"os"
	"path/filepath"
	"testing"
)

// Header is the column layout of the cleaned hourly file.
const Header = "instant,dteday,season,yr,mnth,hr,holiday,weekday,workingday,weathersit,temp,atemp,hum,windspeed,casual,registered,cnt"

// SampleCSV has four hours over two days:
//
//	2011-01-01 08h weather 1 total 50
//	2011-01-01 22h weather 2 total 10
//	2011-01-02 08h weather 1 total 70
//	2011-01-02 12h weather 3 total 30
const SampleCSV = Header + "\n" +
	"1,2011-01-01,1,0,1,8,0,6,0,1,0.24,0.2879,0.81,0,10,40,50\n" +
	"2,2011-01-01,1,0,1,22,0,6,0,2,0.22,0.2727,0.8,0.1045,2,8,10\n" +
	"3,2011-01-02,1,0,1,8,0,0,0,1,0.46,0.4545,0.88,0.2985,20,50,70\n" +
	"4,2011-01-02,1,0,1,12,0,0,0,3,0.44,0.4394,0.94,0.2537,5,25,30\n"

// Write stores content as name inside dir and returns the full path.
func Write(t testing.TB, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return p
}

// WriteSample stores SampleCSV as name inside dir.
func WriteSample(t testing.TB, dir, name string) string {
	t.Helper()
	return Write(t, dir, name, SampleCSV)
}
