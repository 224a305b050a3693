package testutil

// Scenario is a small backup tree covering every row status:
//
//	2024-01-05  three receipts totalling 45.00, EOD 45.00       MATCH
//	2024-01-06  one receipt of 5.00, EOD 4.50                   DISCREPANCY
//	2024-01-07  one receipt, no EOD                             MISSING_EOD
//	2024-01-08  EOD only                                        MISSING_RECEIPTS
//
// plus one unparseable receipt.
type Scenario struct {
	Terminal  string
	Malformed string
	Files     int
}

func (tr *Tree) WriteScenario() Scenario {
	tr.t.Helper()
	terminal := tr.TerminalDir("branch-01")

	tr.WriteReceipt(terminal, 1, ReceiptJSON(1, "2024-01-05T09:01:00", "8.62", "1.38", "10.00"))
	tr.WriteReceipt(terminal, 2, ReceiptJSON(2, "2024-01-05T12:30:10", "17.24", "2.76", "20.00"))
	tr.WriteReceipt(terminal, 3, ReceiptJSON(3, "2024-01-05T18:45:00", "12.93", "2.07", "15.00"))
	tr.WriteReceipt(terminal, 4, ReceiptJSON(4, "2024-01-06T10:00:00", "4.31", "0.69", "5.00"))
	malformed := tr.WriteReceipt(terminal, 5, "<<not a receipt>>")
	tr.WriteReceipt(terminal, 6, ReceiptJSON(6, "2024-01-07T08:00:00", "86.21", "13.79", "100.00"))

	tr.WriteEod(terminal, 1, EodJSON("2024-01-05", 3, 3, "38.79", "6.21", "45.00"))
	tr.WriteEod(terminal, 2, EodJSON("2024-01-06", 1, 4, "4.31", "0.19", "4.50"))
	tr.WriteEod(terminal, 3, EodJSON("2024-01-08", 0, 6, "0.00", "0.00", "0.00"))

	return Scenario{Terminal: terminal, Malformed: malformed, Files: 9}
}
