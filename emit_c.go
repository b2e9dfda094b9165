package hbcht

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// cRuntime is the fixed support code every emitted C artifact carries: a
// two-sided dynamic-array tape (HBCHTCells, "positive" and "negative"
// halves) as called out in spec.md §9 ("an efficient alternative ... is
// what the emitted static-language template does"), grounded on the
// malloc/realloc style of original_source/hbcht.py's _c_template.
const cRuntime = `
typedef struct {
    long *items;
    int length;
    int offset;
} HBCHTIntList;

typedef struct {
    HBCHTIntList *positive;
    HBCHTIntList *negative;
} HBCHTCells;

static void hbcht_intlist_init(HBCHTIntList **list) {
    *list = (HBCHTIntList*) malloc(sizeof(HBCHTIntList));
    if (*list == NULL) exit(EXIT_FAILURE);
    (*list)->length = 0;
    (*list)->offset = 0;
    (*list)->items = NULL;
}

static void hbcht_cells_init(HBCHTCells **cells) {
    *cells = (HBCHTCells*) malloc(sizeof(HBCHTCells));
    if (*cells == NULL) exit(EXIT_FAILURE);
    hbcht_intlist_init(&((*cells)->positive));
    hbcht_intlist_init(&((*cells)->negative));
}

static void hbcht_intlist_destroy(HBCHTIntList *list) {
    free(list->items);
    free(list);
}

static void hbcht_cells_destroy(HBCHTCells *cells) {
    hbcht_intlist_destroy(cells->positive);
    hbcht_intlist_destroy(cells->negative);
    free(cells);
}

static void hbcht_inc_cell_list(HBCHTIntList *list, int pos, long inc) {
    if (pos < list->length) {
        list->items[pos] += inc;
        return;
    }
    int old = list->length;
    list->length = pos + 1;
    list->items = (long*) realloc(list->items, sizeof(long) * list->length);
    if (list->items == NULL) exit(EXIT_FAILURE);
    for (int i = old; i < list->length - 1; i++) list->items[i] = 0;
    list->items[list->length - 1] = inc;
}

static void hbcht_inc_cell(HBCHTCells *cells, int pos, long inc) {
    if (pos >= 0)
        hbcht_inc_cell_list(cells->positive, pos, inc);
    else
        hbcht_inc_cell_list(cells->negative, -pos - 1, inc);
}

static void hbcht_dec_cell(HBCHTCells *cells, int pos, long dec) {
    hbcht_inc_cell(cells, pos, -dec);
}

static long hbcht_get_cell_value(HBCHTCells *cells, int pos) {
    if (pos >= 0 && pos < cells->positive->length)
        return cells->positive->items[pos];
    if (pos < 0 && -pos - 1 < cells->negative->length)
        return cells->negative->items[-pos - 1];
    return 0;
}
`

// emitC lowers p into a standalone C translation unit. Control flow is
// a switch-dispatched goto ladder over labeled blocks, one per basic
// block, following original_source/hbcht.py's _c_template labeling
// scheme (hbchtposN:) but generated as ordinary C rather than a single
// preprocessor macro.
func (p *Program) emitC(functionOnly bool) []byte {
	var b strings.Builder
	titler := cases.Title(language.English)

	fmt.Fprintln(&b, "// Generated by hbcht")
	if p.InputAsText {
		fmt.Fprintln(&b, "#define HBCHT_INPUT_AS_TEXT 1")
	}
	if p.OutputAsText {
		fmt.Fprintln(&b, "#define HBCHT_OUTPUT_AS_TEXT 1")
	}
	fmt.Fprintln(&b, "#include <stdio.h>")
	fmt.Fprintln(&b, "#include <stdlib.h>")
	fmt.Fprintln(&b, "#include <string.h>")
	fmt.Fprintln(&b, "#include <time.h>")
	fmt.Fprintln(&b, "#include <errno.h>")
	fmt.Fprintln(&b, cRuntime)
	fmt.Fprintln(&b, "HBCHTIntList* hbcht_cells_to_list(HBCHTCells *cells);")
	fmt.Fprintln(&b)

	starts := p.entryBlockStarts()
	names := [4]string{"Up", "Right", "Down", "Left"}
	fmt.Fprint(&b, "// Entries:")
	for i, n := range names {
		fmt.Fprintf(&b, " %s=hbchtpos%d", titler.String(n), starts[i])
	}
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "HBCHTIntList* hbcht_run(long inputs[], int length) {")
	fmt.Fprintln(&b, "    HBCHTCells *cells;")
	fmt.Fprintln(&b, "    HBCHTIntList *list;")
	fmt.Fprintln(&b, "    hbcht_cells_init(&cells);")
	fmt.Fprintln(&b, "    for (int k = 0; k < length; k++) {")
	fmt.Fprintln(&b, "        if (inputs[k] < 0) { hbcht_cells_destroy(cells); return NULL; }")
	fmt.Fprintln(&b, "        hbcht_inc_cell(cells, k, inputs[k]);")
	fmt.Fprintln(&b, "    }")
	fmt.Fprintln(&b, "    int i = 0;")
	fmt.Fprintln(&b, "    int which = rand() % 4;")
	fmt.Fprintf(&b, "    switch (which) {\n")
	fmt.Fprintf(&b, "        case 0: goto hbchtpos%d;\n", starts[0])
	fmt.Fprintf(&b, "        case 1: goto hbchtpos%d;\n", starts[1])
	fmt.Fprintf(&b, "        case 2: goto hbchtpos%d;\n", starts[2])
	fmt.Fprintf(&b, "        default: goto hbchtpos%d;\n", starts[3])
	fmt.Fprintln(&b, "    }")

	for _, blk := range p.basicBlocks() {
		fmt.Fprintf(&b, " hbchtpos%d:\n", blk.start)
		for _, in := range blk.instrs {
			switch in.Op {
			case OpDec:
				fmt.Fprintf(&b, "    hbcht_dec_cell(cells, i, %d);\n", in.Arg)
			case OpInc:
				fmt.Fprintf(&b, "    hbcht_inc_cell(cells, i, %d);\n", in.Arg)
			case OpPrevCell:
				fmt.Fprintf(&b, "    i -= %d;\n", in.Arg)
			case OpNextCell:
				fmt.Fprintf(&b, "    i += %d;\n", in.Arg)
			case OpIf:
				fmt.Fprintf(&b, "    if (hbcht_get_cell_value(cells, i) != hbcht_get_cell_value(cells, i - 1))\n        goto hbchtpos%d;\n", in.Arg)
			case OpGoto:
				fmt.Fprintf(&b, "    goto hbchtpos%d;\n", in.Arg)
			case OpExit:
				fmt.Fprintln(&b, "    goto hbchtposend;")
			}
		}
	}

	fmt.Fprintln(&b, " hbchtposend:")
	fmt.Fprintln(&b, "    list = hbcht_cells_to_list(cells);")
	fmt.Fprintln(&b, "    hbcht_cells_destroy(cells);")
	fmt.Fprintln(&b, "    return list;")
	fmt.Fprintln(&b, "}")
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "HBCHTIntList* hbcht_cells_to_list(HBCHTCells *cells) {")
	fmt.Fprintln(&b, "    HBCHTIntList *l;")
	fmt.Fprintln(&b, "    hbcht_intlist_init(&l);")
	fmt.Fprintln(&b, "    int total = cells->negative->length + cells->positive->length;")
	fmt.Fprintln(&b, "    if (total == 0) return l;")
	fmt.Fprintln(&b, "    l->length = total;")
	fmt.Fprintln(&b, "    l->offset = cells->negative->length;")
	fmt.Fprintln(&b, "    l->items = (long*) malloc(sizeof(long) * total);")
	fmt.Fprintln(&b, "    int k = 0;")
	fmt.Fprintln(&b, "    for (int j = cells->negative->length - 1; j >= 0; j--, k++)")
	fmt.Fprintln(&b, "        l->items[k] = cells->negative->items[j];")
	fmt.Fprintln(&b, "    for (int j = 0; j < cells->positive->length; j++, k++)")
	fmt.Fprintln(&b, "        l->items[k] = cells->positive->items[j];")
	fmt.Fprintln(&b, "    return l;")
	fmt.Fprintln(&b, "}")
	fmt.Fprintln(&b)

	if !functionOnly {
		fmt.Fprintln(&b, cMainTemplate(p.InputAsText, p.OutputAsText))
	}

	return []byte(b.String())
}

// cMainTemplate renders the argv-parsing entry point and formatted-output
// helper (hbcht_text_to_ints / hbcht_run_format / main), mirroring
// original_source/hbcht.py's _c_template_mainfunc.
func cMainTemplate(inputAsText, outputAsText bool) string {
	var b strings.Builder

	fmt.Fprintln(&b, "static char* hbcht_run_format(long inputs[], int length) {")
	fmt.Fprintln(&b, "    HBCHTIntList *a = hbcht_run(inputs, length);")
	fmt.Fprintln(&b, "    if (a == NULL) return NULL;")
	if outputAsText {
		fmt.Fprintln(&b, "    char *retstr = (char*) malloc(sizeof(char) * (a->length + 1));")
		fmt.Fprintln(&b, "    int k = 0;")
		fmt.Fprintln(&b, "    for (int j = 0; j < a->length; j++)")
		fmt.Fprintln(&b, "        if (a->items[j] != 0) retstr[k++] = (char) a->items[j];")
		fmt.Fprintln(&b, "    retstr[k] = '\\0';")
	} else {
		fmt.Fprintln(&b, "    char *retstr;")
		fmt.Fprintln(&b, "    int nonzero = 0;")
		fmt.Fprintln(&b, "    for (int j = 0; j < a->length; j++) if (a->items[j] != 0) nonzero++;")
		fmt.Fprintln(&b, "    if (nonzero == 0) {")
		fmt.Fprintln(&b, "        retstr = (char*) malloc(8);")
		fmt.Fprintln(&b, "        strcpy(retstr, \"(empty)\");")
		fmt.Fprintln(&b, "    } else {")
		fmt.Fprintln(&b, "        char tstr[20];")
		fmt.Fprintln(&b, "        sprintf(tstr, \"%ld\", (long)(-a->offset));")
		fmt.Fprintln(&b, "        int width = strlen(tstr);")
		fmt.Fprintln(&b, "        sprintf(tstr, \"%ld\", (long)(a->length - a->offset));")
		fmt.Fprintln(&b, "        if ((int) strlen(tstr) > width) width = strlen(tstr);")
		fmt.Fprintln(&b, "        char fmt[16];")
		fmt.Fprintln(&b, "        sprintf(fmt, \"%%%dld: %%ld\\n\", width);")
		fmt.Fprintln(&b, "        retstr = (char*) malloc(sizeof(char) * a->length * 25 + 1);")
		fmt.Fprintln(&b, "        retstr[0] = '\\0';")
		fmt.Fprintln(&b, "        char line[32];")
		fmt.Fprintln(&b, "        for (int j = 0; j < a->length; j++) {")
		fmt.Fprintln(&b, "            if (a->items[j] == 0) continue;")
		fmt.Fprintln(&b, "            sprintf(line, fmt, (long)(j - a->offset), a->items[j]);")
		fmt.Fprintln(&b, "            strcat(retstr, line);")
		fmt.Fprintln(&b, "        }")
		fmt.Fprintln(&b, "    }")
	}
	fmt.Fprintln(&b, "    hbcht_intlist_destroy(a);")
	fmt.Fprintln(&b, "    return retstr;")
	fmt.Fprintln(&b, "}")
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "static HBCHTIntList* hbcht_text_to_ints(char* argv[], int argc) {")
	fmt.Fprintln(&b, "    HBCHTIntList *l;")
	fmt.Fprintln(&b, "    hbcht_intlist_init(&l);")
	fmt.Fprintln(&b, "    for (int k = 0; k < argc; k++) {")
	if inputAsText {
		fmt.Fprintln(&b, "        for (char *c = argv[k]; *c; c++) hbcht_inc_cell_list(l, l->length, (unsigned char)*c);")
	} else {
		fmt.Fprintln(&b, "        char *end; errno = 0;")
		fmt.Fprintln(&b, "        long num = strtol(argv[k], &end, 10);")
		fmt.Fprintln(&b, "        if (errno == 0 && *end == 0 && end != argv[k]) {")
		fmt.Fprintln(&b, "            hbcht_inc_cell_list(l, l->length, num);")
		fmt.Fprintln(&b, "        } else {")
		fmt.Fprintln(&b, "            for (char *c = argv[k]; *c; c++) hbcht_inc_cell_list(l, l->length, (unsigned char)*c);")
		fmt.Fprintln(&b, "        }")
	}
	fmt.Fprintln(&b, "    }")
	fmt.Fprintln(&b, "    return l;")
	fmt.Fprintln(&b, "}")
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "int main(int argc, char *argv[]) {")
	fmt.Fprintln(&b, "    srand(time(NULL));")
	fmt.Fprintln(&b, "    HBCHTIntList *il = hbcht_text_to_ints(argv + 1, argc - 1);")
	fmt.Fprintln(&b, "    char *result = hbcht_run_format(il->items, il->length);")
	fmt.Fprintln(&b, "    hbcht_intlist_destroy(il);")
	fmt.Fprintln(&b, "    if (result == NULL) {")
	fmt.Fprintln(&b, "        fprintf(stderr, \"input values must be non-negative\\n\");")
	fmt.Fprintln(&b, "        return EXIT_FAILURE;")
	fmt.Fprintln(&b, "    }")
	fmt.Fprintln(&b, "    printf(\"%s\", result);")
	fmt.Fprintln(&b, "    free(result);")
	fmt.Fprintln(&b, "    return EXIT_SUCCESS;")
	fmt.Fprintln(&b, "}")

	return b.String()
}
