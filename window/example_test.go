package window

import "fmt"

func ExampleGenerate() {
	w := Generate(KindHann, 4)
	fmt.Printf("%.2f %.2f %.2f %.2f\n", w[0], w[1], w[2], w[3])
	// Output:
	// 0.00 0.75 0.75 0.00
}

func ExampleInfo() {
	m := Info(KindHann)
	fmt.Printf("%s %.1f %d\n", m.Name, m.ENBW, m.FirstMinimumBins)
	// Output:
	// Hann 1.5 2
}
