package meshing

// Corner ci sits at offset (ci>>2&1, ci>>1&1, ci&1), so the maximal corner is 7.
var cornerOffsets = [8][3]int{
	{0, 0, 0}, {0, 0, 1}, {0, 1, 0}, {0, 1, 1},
	{1, 0, 0}, {1, 0, 1}, {1, 1, 0}, {1, 1, 1},
}

var cellEdges = [12][2]int{
	{0, 1}, {0, 2}, {0, 4}, {1, 3}, {1, 5}, {2, 3},
	{2, 6}, {3, 7}, {4, 5}, {4, 6}, {5, 7}, {6, 7},
}

// farEdges are the edges touching corner 7, one per axis.
var farEdges = [3][2]int{{3, 7}, {5, 7}, {6, 7}}

// farNeighbours are the three other cells sharing each far edge.
var farNeighbours = [3][3][3]int{
	{{0, 0, 1}, {0, 1, 0}, {0, 1, 1}},
	{{0, 0, 1}, {1, 0, 0}, {1, 0, 1}},
	{{0, 1, 0}, {1, 0, 0}, {1, 1, 0}},
}
