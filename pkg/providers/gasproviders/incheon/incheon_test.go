package incheon

import (
	"strings"
	"testing"
)

const sampleHeatDWR = `throw 'allowScriptTagRemoting is false.';
//#DWR-INSERT
//#DWR-REPLY
var s0="2024\ub144 02\uc6d4 43.012 MJ/Nm3";
dwr.engine._remoteHandleCallback('0','0',s0);`

const samplePriceDWR = `//#DWR-REPLY
var s0="";var s6="19.6512";
dwr.engine._remoteHandleCallback('0','0',{fee:s6});`

func TestParseHeatFromDWR(t *testing.T) {
	v, err := ParseHeatFromDWR(sampleHeatDWR)
	if err != nil {
		t.Fatalf("ParseHeatFromDWR: %v", err)
	}
	if v != 43.012 {
		t.Errorf("heat = %v, want 43.012", v)
	}
}

func TestParseHeatFromDWRMissing(t *testing.T) {
	if _, err := ParseHeatFromDWR(`//#DWR-REPLY`); err == nil {
		t.Error("expected error for empty reply")
	}
	if _, err := ParseHeatFromDWR(`var s0="no unit here";`); err == nil {
		t.Error("expected error for reply without MJ value")
	}
}

func TestParsePriceFromDWR(t *testing.T) {
	v, err := ParsePriceFromDWR(samplePriceDWR)
	if err != nil {
		t.Fatalf("ParsePriceFromDWR: %v", err)
	}
	if v != 19.6512 {
		t.Errorf("price = %v, want 19.6512", v)
	}
}

func TestParsePriceFromDWRMissing(t *testing.T) {
	if _, err := ParsePriceFromDWR(`var s0="";`); err == nil {
		t.Error("expected error when s6 is absent")
	}
}

func TestDWRPayloadShape(t *testing.T) {
	payload := dwrPayload("feeAjax", "getHeatAmt", "202402")
	for _, want := range []string{
		"c0-scriptName=feeAjax",
		"c0-methodName=getHeatAmt",
		"c0-param0=string:202402",
		"batchId=0",
	} {
		if !strings.Contains(payload, want) {
			t.Errorf("payload missing %q:\n%s", want, payload)
		}
	}
}
