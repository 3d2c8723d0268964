package perm_test

import (
	"fmt"

	"github.com/matzehuels/layerroute/pkg/perm"
)

func ExampleGenerate() {
	// Generate all permutations of 3 elements
	perms := perm.Generate(3, -1)
	fmt.Println("All permutations of [0,1,2]:")
	for _, p := range perms {
		fmt.Println(p)
	}
	// Output:
	// All permutations of [0,1,2]:
	// [0 1 2]
	// [0 2 1]
	// [1 0 2]
	// [1 2 0]
	// [2 0 1]
	// [2 1 0]
}

func ExampleGenerate_limited() {
	// Only the first 5 orders of 10 nets
	perms := perm.Generate(10, 5)
	fmt.Println("Count:", len(perms))
	fmt.Println("Last:", perms[4])
	// Output:
	// Count: 5
	// Last: [0 1 2 3 4 5 6 9 7 8]
}

func ExampleAll() {
	for rank, p := range perm.All(3, 3) {
		fmt.Println(rank, p)
	}
	// Output:
	// 0 [0 1 2]
	// 1 [0 2 1]
	// 2 [1 0 2]
}

func ExampleFactorial() {
	fmt.Println("4! =", perm.Factorial(4))
	fmt.Println("9! =", perm.Factorial(9))
	// Output:
	// 4! = 24
	// 9! = 362880
}
