// Command sketch is an interactive terminal front end for the document
// core: a numbered menu for adding shapes, printing the tree, hit
// testing, and navigating undo/redo history.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sketchd/sketchd/internal/document"
	"github.com/sketchd/sketchd/internal/history"
	"github.com/sketchd/sketchd/internal/shape"
)

var stdin = bufio.NewScanner(os.Stdin)

func main() {
	doc := document.NewSampleDocument()

	fmt.Println("Initial structure:")
	doc.Print(os.Stdout)

	menu(doc)
}

func menu(doc *document.Document) {
	for {
		fmt.Println("\n--- Editor menu ---")
		fmt.Println("1. Add circle")
		fmt.Println("2. Add rectangle")
		fmt.Println("3. Add group")
		fmt.Println("4. Show all objects")
		fmt.Println("5. Undo")
		fmt.Println("6. Redo")
		fmt.Println("7. Find object at point")
		fmt.Println("8. Remove last object")
		fmt.Println("0. Quit")

		switch readInt("Choose an option: ") {
		case 1:
			doc.AddObject(createCircle())
			fmt.Println("Circle added.")
		case 2:
			doc.AddObject(createRectangle())
			fmt.Println("Rectangle added.")
		case 3:
			doc.AddObject(createGroup())
			fmt.Println("Group added.")
		case 4:
			fmt.Println("Current objects:")
			doc.Print(os.Stdout)
		case 5:
			if err := doc.Undo(); errors.Is(err, history.ErrNothingToUndo) {
				fmt.Println("Nothing to undo.")
			}
		case 6:
			if err := doc.Redo(); errors.Is(err, history.ErrNothingToRedo) {
				fmt.Println("Nothing to redo.")
			}
		case 7:
			x := readInt("Enter X coordinate: ")
			y := readInt("Enter Y coordinate: ")
			found := doc.FindObjectAt(x, y)
			if found != nil {
				fmt.Println("Found object:")
				found.Draw(os.Stdout, 0)
			} else {
				fmt.Println("No object found at that point.")
			}
		case 8:
			if _, err := doc.RemoveLast(); err != nil {
				fmt.Println("Nothing to remove.")
			} else {
				fmt.Println("Last object removed.")
			}
		case 0:
			fmt.Println("Bye.")
			return
		default:
			fmt.Println("Invalid choice, try again.")
		}
	}
}

// readInt prompts until the user enters a valid integer.
func readInt(prompt string) int {
	for {
		fmt.Print(prompt)
		if !stdin.Scan() {
			fmt.Println()
			os.Exit(0)
		}
		val, err := strconv.Atoi(strings.TrimSpace(stdin.Text()))
		if err == nil {
			return val
		}
		fmt.Println("Not a valid number, try again.")
	}
}

// readPositive prompts until the user enters a positive integer.
func readPositive(prompt string) int {
	for {
		v := readInt(prompt)
		if v > 0 {
			return v
		}
		fmt.Println("Value must be positive.")
	}
}

func createCircle() shape.Shape {
	x := readInt("Circle center X: ")
	y := readInt("Circle center Y: ")
	r := readPositive("Circle radius (>0): ")
	c, err := shape.NewCircle(x, y, r)
	if err != nil {
		// readPositive already rejected non-positive radii
		panic(err)
	}
	return c
}

func createRectangle() shape.Shape {
	x := readInt("Top-left X: ")
	y := readInt("Top-left Y: ")
	w := readPositive("Width (>0): ")
	h := readPositive("Height (>0): ")
	rect, err := shape.NewRect(x, y, w, h)
	if err != nil {
		panic(err)
	}
	return rect
}

func createGroup() *shape.Group {
	x := readInt("Group X position: ")
	y := readInt("Group Y position: ")
	group := shape.NewGroup(x, y)

	count := readInt("Number of objects to add to the group: ")
	for i := 0; i < count; i++ {
		fmt.Printf("Object #%d type:\n", i+1)
		fmt.Println("1. Circle")
		fmt.Println("2. Rectangle")
		fmt.Println("3. Group")

		switch readInt("Your choice: ") {
		case 1:
			group.Add(createCircle())
		case 2:
			group.Add(createRectangle())
		case 3:
			group.Add(createGroup())
		default:
			fmt.Println("Invalid choice, skipping this object.")
		}
	}
	return group
}
