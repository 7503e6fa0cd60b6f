package tabsniff_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/nao1215/tabsniff"
)

func ExampleParser() {
	data := []byte("id,name,joined\n1,Alice,2020-01-15\n3,Bob,2020-03-02\n")

	p, err := tabsniff.NewParserFromBytes("users.csv", data)
	if err != nil {
		log.Fatal(err)
	}
	defer p.Close()

	ctx := context.Background()
	schema, err := p.InferSchema(ctx)
	if err != nil {
		log.Fatal(err)
	}
	if !schema.OK() {
		log.Fatalf("no table found: %s", schema.Status)
	}
	for _, col := range schema.Columns {
		if col.Format != "" {
			fmt.Println(col.Name, col.Type, col.Format)
			continue
		}
		fmt.Println(col.Name, col.Type)
	}

	for row, err := range p.Rows(ctx) {
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(row.Number, row.Values[0], row.Values[1], row.Values[2])
	}

	// Output:
	// id Integer
	// name String
	// joined Date %Y-%m-%d
	// 1 1 Alice 2020-01-15
	// 2 3 Bob 2020-03-02
}

func ExampleParser_Open() {
	data := []byte("qty\n1\n2\nmany\n")

	// A small sample keeps the last row out of inference
	p, err := tabsniff.NewParserFromBytes("qty.csv", data, tabsniff.WithSampleRows(3))
	if err != nil {
		log.Fatal(err)
	}
	defer p.Close()

	ctx := context.Background()
	if _, err := p.InferSchema(ctx); err != nil {
		log.Fatal(err)
	}

	rows, err := p.Open(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer rows.Close()

	for rows.Next() {
		row := rows.Row()
		if len(row.Mismatches) > 0 {
			fmt.Printf("row %d: %q is not an integer\n", row.Number, row.Mismatches[0].Raw)
			continue
		}
		fmt.Printf("row %d: %d\n", row.Number, row.Values[0])
	}
	if err := rows.Err(); err != nil {
		log.Fatal(err)
	}

	// Output:
	// row 1: 1
	// row 2: 2
	// row 3: "many" is not an integer
}

func ExampleSchema_Snapshot() {
	p, err := tabsniff.NewParserFromBytes("users.csv", []byte("id,name\n1,Alice\n3,Bob\n"))
	if err != nil {
		log.Fatal(err)
	}
	schema, err := p.InferSchema(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	data, err := schema.Snapshot().JSON()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(data))

	baseline, err := tabsniff.ParseSnapshot(data)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("unchanged:", baseline.Equal(schema.Snapshot(), tabsniff.EqualOptions{}))

	// Output:
	// {
	//   "status": "OK",
	//   "charset": "UTF-8",
	//   "delimiter": ",",
	//   "newline": "\n",
	//   "comment": null,
	//   "quote_char": "\"",
	//   "escape_char": null,
	//   "first_data_row": 1,
	//   "remove_null_strings": false,
	//   "columns": [
	//     {
	//       "index": 0,
	//       "column_name": "id",
	//       "column_type": "Integer",
	//       "format": null,
	//       "is_list": false
	//     },
	//     {
	//       "index": 1,
	//       "column_name": "name",
	//       "column_type": "String",
	//       "format": null,
	//       "is_list": false
	//     }
	//   ]
	// }
	// unchanged: true
}

func ExampleOpenDB() {
	dir, err := os.MkdirTemp("", "tabsniff-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "users.csv")
	content := "id,name,joined\n1,Alice,2020-01-15\n3,Bob,2020-03-02\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		log.Fatal(err)
	}

	db, err := tabsniff.OpenDB(path)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	rows, err := db.Query("SELECT name, typeof(id) FROM users WHERE joined >= '2020-02-01'")
	if err != nil {
		log.Fatal(err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, idType string
		if err := rows.Scan(&name, &idType); err != nil {
			log.Fatal(err)
		}
		fmt.Println(name, idType)
	}
	if err := rows.Err(); err != nil {
		log.Fatal(err)
	}

	// Output:
	// Bob integer
}
